package render

import (
	"math"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/surface"
)

const (
	barPadLeft   = 56.0
	barPadRight  = 16.0
	barPadTop    = 20.0
	barPadBottom = 44.0
	barGap       = 12.0
	minBarWidth  = 14.0

	// DimAlpha marks bars without a usable ratio; FullAlpha bars carry data.
	DimAlpha  = 0.25
	FullAlpha = 0.90
)

// EmptyText is drawn when a chart has nothing to plot.
const EmptyText = "Sin datos"

// BarOptions configures the ratio bar chart.
type BarOptions struct {
	YTitle    string
	EmptyText string
}

func (o BarOptions) withDefaults() BarOptions {
	if o.YTitle == "" {
		o.YTitle = "Ratio costo / ventaja"
	}
	if o.EmptyText == "" {
		o.EmptyText = EmptyText
	}
	return o
}

// Bar is one laid out bar in CSS pixels.
type Bar struct {
	Name   string
	Ratio  decision.Num
	Value  float64
	X      float64
	Y      float64
	W      float64
	H      float64
	Color  string
	Alpha  float64
	Dimmed bool
}

// BarLayout is the full bar chart geometry.
type BarLayout struct {
	Width, Height float64
	PlotX, PlotY  float64
	PlotW, PlotH  float64
	Max           float64
	Bars          []Bar
}

// LayoutBars computes bar geometry for a w x h chart. Missing ratios lay out as zero
// height and are dimmed; the scale never drops below 1.
func LayoutBars(items []decision.Item, w, h float64, opts BarOptions) BarLayout {
	l := BarLayout{
		Width:  w,
		Height: h,
		PlotX:  barPadLeft,
		PlotY:  barPadTop,
		PlotW:  math.Max(0, w-barPadLeft-barPadRight),
		PlotH:  math.Max(0, h-barPadTop-barPadBottom),
		Max:    1,
	}
	n := len(items)
	if n == 0 {
		return l
	}
	values := make([]float64, n)
	for i, it := range items {
		values[i] = it.Ratio.Or(0)
		if values[i] > l.Max {
			l.Max = values[i]
		}
	}
	bw := (l.PlotW - barGap*float64(n-1)) / float64(n)
	if bw < minBarWidth {
		bw = minBarWidth
	}
	l.Bars = make([]Bar, n)
	for i, it := range items {
		v := values[i]
		bh := 0.0
		if v > 0 {
			bh = v / l.Max * l.PlotH
		}
		dimmed := !it.Ratio.Valid() || v == 0
		alpha := FullAlpha
		if dimmed {
			alpha = DimAlpha
		}
		l.Bars[i] = Bar{
			Name:   it.Name,
			Ratio:  it.Ratio,
			Value:  v,
			X:      l.PlotX + float64(i)*(bw+barGap),
			Y:      l.PlotY + l.PlotH - bh,
			W:      bw,
			H:      bh,
			Color:  PaletteColor(i),
			Alpha:  alpha,
			Dimmed: dimmed,
		}
	}
	return l
}

// RenderBars prepares the surface and draws the ratio bar chart on it.
func RenderBars(s *surface.Surface, dpr float64, items []decision.Item, opts BarOptions) (BarLayout, error) {
	opts = opts.withDefaults()
	ctx, w, h, err := surface.Prepare(s, dpr)
	if err != nil {
		return BarLayout{}, err
	}
	l := LayoutBars(items, w, h, opts)
	ctx.Clear(background)
	if len(l.Bars) == 0 {
		drawEmpty(ctx, opts.EmptyText)
		return l, ctx.Finish()
	}

	base := l.PlotY + l.PlotH
	tickFont := surface.Font{Size: 11, Color: mutedInk, Align: surface.AlignRight}
	for _, v := range GridValues(l.Max, 2) {
		y := base - v/l.Max*l.PlotH
		ctx.Line(l.PlotX, y, l.PlotX+l.PlotW, y, gridColor, 1, []float64{4, 4})
		ctx.Text(TickLabel(v), l.PlotX-6, y+4, tickFont)
	}
	ctx.Line(l.PlotX, l.PlotY, l.PlotX, base, axisColor, 1, nil)
	ctx.Line(l.PlotX, base, l.PlotX+l.PlotW, base, axisColor, 1, nil)

	labelFont := surface.Font{Size: 12, Color: inkColor, Align: surface.AlignCenter}
	for _, b := range l.Bars {
		ctx.FillRect(b.X, b.Y, b.W, b.H, WithAlpha(b.Color, b.Alpha))
		if b.H == 0 {
			// keep a hairline so no-data bars stay visible
			ctx.Line(b.X, base-1, b.X+b.W, base-1, WithAlpha(b.Color, b.Alpha), 2, nil)
		}
		ctx.Text(fitLabel(ctx, b.Name, b.W+barGap, labelFont.Size), b.X+b.W/2, base+18, labelFont)
	}
	ctx.RotatedText(opts.YTitle, 14, l.PlotY+l.PlotH/2, -math.Pi/2,
		surface.Font{Size: 12, Color: inkColor, Align: surface.AlignCenter})
	return l, ctx.Finish()
}

// fitLabel shortens text with an ellipsis until it fits maxW.
func fitLabel(ctx *surface.Context, text string, maxW, size float64) string {
	if ctx.MeasureText(text, size) <= maxW {
		return text
	}
	r := []rune(text)
	for len(r) > 1 {
		r = r[:len(r)-1]
		if s := string(r) + "…"; ctx.MeasureText(s, size) <= maxW {
			return s
		}
	}
	return string(r)
}

func drawEmpty(ctx *surface.Context, text string) {
	ctx.Text(text, ctx.Width()/2, ctx.Height()/2, surface.Font{Size: 14, Color: mutedInk, Align: surface.AlignCenter})
}
