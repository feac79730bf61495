package render

import (
	"math"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/surface"
)

const (
	scatterPad    = 56.0
	labelOffset   = 8.0
	gridDivisions = 5

	// LabelFlipMargin is the distance from the right edge inside which point
	// labels switch to right alignment.
	LabelFlipMargin = 140.0

	DefaultPointRadius = 5.0
	DefaultLineWidth   = 2.0
)

// ScatterOptions configures the cost vs benefit vector chart.
type ScatterOptions struct {
	XLabel      string
	YLabel      string
	PointRadius float64
	LineWidth   float64
	HideGrid    bool
	EmptyText   string
}

func (o ScatterOptions) withDefaults() ScatterOptions {
	if o.XLabel == "" {
		o.XLabel = "Costo (S/)"
	}
	if o.YLabel == "" {
		o.YLabel = "Ventaja total"
	}
	if o.PointRadius <= 0 {
		o.PointRadius = DefaultPointRadius
	}
	if o.LineWidth <= 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.EmptyText == "" {
		o.EmptyText = EmptyText
	}
	return o
}

// Point is a plotted item in CSS pixels.
type Point struct {
	Name       string
	Cost       float64
	Total      float64
	Ratio      decision.Num
	X          float64
	Y          float64
	Color      string
	LabelX     float64
	LabelAlign surface.Align
}

// Geometry is the pixel snapshot of the last scatter render, kept for hit-testing.
type Geometry struct {
	Width, Height    float64
	OriginX, OriginY float64
	MaxCost          float64
	MaxTotal         float64
	Points           []Point
}

// LayoutScatter maps the plottable items onto a w x h chart. Items without cost or
// total and zero rows are left out; colors follow the item index so they match the
// bar chart.
func LayoutScatter(items []decision.Item, w, h float64, opts ScatterOptions) Geometry {
	g := Geometry{
		Width:    w,
		Height:   h,
		OriginX:  scatterPad,
		OriginY:  h - scatterPad,
		MaxCost:  1,
		MaxTotal: 1,
	}
	type plotted struct {
		idx  int
		item decision.Item
	}
	var keep []plotted
	for i, it := range items {
		if !it.Plottable() {
			continue
		}
		keep = append(keep, plotted{i, it})
		g.MaxCost = math.Max(g.MaxCost, it.Cost.Or(0))
		g.MaxTotal = math.Max(g.MaxTotal, it.Total.Or(0))
	}
	plotW := math.Max(0, w-2*scatterPad)
	plotH := math.Max(0, h-2*scatterPad)
	for _, p := range keep {
		cost := p.item.Cost.Or(0)
		total := p.item.Total.Or(0)
		x := scatterPad + cost/g.MaxCost*plotW
		y := h - scatterPad - total/g.MaxTotal*plotH
		pt := Point{
			Name:       p.item.Name,
			Cost:       cost,
			Total:      total,
			Ratio:      p.item.Ratio,
			X:          x,
			Y:          y,
			Color:      PaletteColor(p.idx),
			LabelX:     x + labelOffset,
			LabelAlign: surface.AlignLeft,
		}
		if x > w-LabelFlipMargin {
			pt.LabelX = x - labelOffset
			pt.LabelAlign = surface.AlignRight
		}
		g.Points = append(g.Points, pt)
	}
	return g
}

// RenderScatter prepares the surface, draws the vector chart and returns the
// geometry snapshot of what was drawn.
func RenderScatter(s *surface.Surface, dpr float64, items []decision.Item, opts ScatterOptions) (Geometry, error) {
	opts = opts.withDefaults()
	ctx, w, h, err := surface.Prepare(s, dpr)
	if err != nil {
		return Geometry{}, err
	}
	g := LayoutScatter(items, w, h, opts)
	ctx.Clear(background)
	if len(g.Points) == 0 {
		drawEmpty(ctx, opts.EmptyText)
		return g, ctx.Finish()
	}

	right := w - scatterPad
	top := scatterPad
	tickX := surface.Font{Size: 11, Color: mutedInk, Align: surface.AlignCenter}
	tickY := surface.Font{Size: 11, Color: mutedInk, Align: surface.AlignRight}
	for i, v := range GridValues(g.MaxCost, gridDivisions) {
		x := g.OriginX + (right-g.OriginX)*float64(i)/gridDivisions
		if !opts.HideGrid && i > 0 {
			ctx.Line(x, top, x, g.OriginY, gridColor, 1, []float64{4, 4})
		}
		ctx.Text(TickLabel(v), x, g.OriginY+16, tickX)
	}
	for i, v := range GridValues(g.MaxTotal, gridDivisions) {
		y := g.OriginY - (g.OriginY-top)*float64(i)/gridDivisions
		if !opts.HideGrid && i > 0 {
			ctx.Line(g.OriginX, y, right, y, gridColor, 1, []float64{4, 4})
		}
		ctx.Text(TickLabel(v), g.OriginX-6, y+4, tickY)
	}
	ctx.Line(g.OriginX, top, g.OriginX, g.OriginY, axisColor, 1, nil)
	ctx.Line(g.OriginX, g.OriginY, right, g.OriginY, axisColor, 1, nil)

	axisFont := surface.Font{Size: 12, Color: inkColor, Align: surface.AlignCenter}
	ctx.Text(opts.XLabel, g.OriginX+(right-g.OriginX)/2, h-10, axisFont)
	ctx.RotatedText(opts.YLabel, 14, top+(g.OriginY-top)/2, -math.Pi/2, axisFont)

	for _, p := range g.Points {
		col := WithAlpha(p.Color, 1)
		ctx.Line(g.OriginX, g.OriginY, p.X, p.Y, col, opts.LineWidth, nil)
		ctx.FillCircle(p.X, p.Y, opts.PointRadius, col)
		ctx.Text(p.Name, p.LabelX, p.Y+4, surface.Font{Size: 12, Color: inkColor, Align: p.LabelAlign})
	}
	return g, ctx.Finish()
}
