package interact

import (
	"math"

	"github.com/iafilius/CBACharts/src/echarts"
	"github.com/iafilius/CBACharts/src/render"
)

// DefaultThreshold is the click radius, in CSS pixels, for fallback charts.
const DefaultThreshold = 10.0

// Pt is a point in CSS pixels.
type Pt struct{ X, Y float64 }

// DistanceToSegment returns the distance from p to the segment ab.
func DistanceToSegment(p, a, b Pt) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// HitTest resolves a click against the last scatter geometry. A point is scored by
// the closer of its marker and its vector from the origin; the best score wins when
// it is within threshold.
func HitTest(g render.Geometry, x, y, threshold float64) (render.Point, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	cursor := Pt{x, y}
	origin := Pt{g.OriginX, g.OriginY}
	best := -1
	bestD := math.Inf(1)
	for i, p := range g.Points {
		pt := Pt{p.X, p.Y}
		d := math.Min(math.Hypot(x-p.X, y-p.Y), DistanceToSegment(cursor, origin, pt))
		if d < bestD {
			best, bestD = i, d
		}
	}
	if best < 0 || bestD > threshold {
		return render.Point{}, false
	}
	return g.Points[best], true
}

// HitBar returns the index of the bar under (x, y), including the empty column above
// short bars.
func HitBar(l render.BarLayout, x, y float64) (int, bool) {
	if y < l.PlotY || y > l.PlotY+l.PlotH {
		return 0, false
	}
	for i, b := range l.Bars {
		if x >= b.X && x <= b.X+b.W {
			return i, true
		}
	}
	return 0, false
}

// PickLibraryElement keeps the first data vertex among library hits; origin vertices
// are never reported.
func PickLibraryElement(els []echarts.Element) (echarts.Element, bool) {
	for _, el := range els {
		if el.DataIndex == 1 {
			return el, true
		}
	}
	return echarts.Element{}, false
}
