package surface

import (
	"bytes"
	"fmt"
	"html"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Align is the horizontal anchor of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font describes a text run in CSS pixels.
type Font struct {
	Size  float64
	Color drawing.Color
	Align Align
}

// Context is a drawing context in CSS pixel units. Every coordinate is scaled by
// the device pixel ratio before it reaches the underlying go-chart renderer.
type Context struct {
	s   *Surface
	r   chart.Renderer
	dpr float64
	w   float64
	h   float64
}

// Prepare sizes the surface bitmap for dpr and returns a context plus the CSS size.
// It must run once per render: the bitmap may have changed since the last one.
func Prepare(s *Surface, dpr float64) (*Context, float64, float64, error) {
	dpr = NormalizeDPR(dpr)
	cssW, cssH := s.CSSSize(dpr)
	bw := int(math.Round(cssW * dpr))
	bh := int(math.Round(cssH * dpr))
	if bw < 1 {
		bw = 1
	}
	if bh < 1 {
		bh = 1
	}
	if s.Width != bw || s.Height != bh {
		s.Width, s.Height = bw, bh
		s.resizes++
	}

	provider := chart.PNG
	if s.Format == SVG {
		provider = chart.SVG
	}
	r, err := provider(bw, bh)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create %s renderer: %w", s.Format, err)
	}
	r.SetDPI(72 * dpr)
	if f, ferr := chart.GetDefaultFont(); ferr == nil {
		r.SetFont(f)
	} else {
		return nil, 0, 0, fmt.Errorf("load default font: %w", ferr)
	}
	return &Context{s: s, r: r, dpr: dpr, w: cssW, h: cssH}, cssW, cssH, nil
}

func (c *Context) Width() float64  { return c.w }
func (c *Context) Height() float64 { return c.h }
func (c *Context) DPR() float64    { return c.dpr }

func (c *Context) px(v float64) int { return int(math.Round(v * c.dpr)) }

// Clear paints the whole surface.
func (c *Context) Clear(bg drawing.Color) {
	c.FillRect(0, 0, c.w, c.h, bg)
}

func (c *Context) FillRect(x, y, w, h float64, col drawing.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(c.px(x), c.px(y))
	c.r.LineTo(c.px(x+w), c.px(y))
	c.r.LineTo(c.px(x+w), c.px(y+h))
	c.r.LineTo(c.px(x), c.px(y+h))
	c.r.LineTo(c.px(x), c.px(y))
	c.r.Close()
	c.r.Fill()
}

// Line strokes a segment; dash is in CSS pixels, nil for solid.
func (c *Context) Line(x1, y1, x2, y2 float64, col drawing.Color, width float64, dash []float64) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width * c.dpr)
	if len(dash) > 0 {
		scaled := make([]float64, len(dash))
		for i, d := range dash {
			scaled[i] = d * c.dpr
		}
		c.r.SetStrokeDashArray(scaled)
	}
	c.r.MoveTo(c.px(x1), c.px(y1))
	c.r.LineTo(c.px(x2), c.px(y2))
	c.r.Stroke()
}

func (c *Context) FillCircle(x, y, radius float64, col drawing.Color) {
	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.Circle(radius*c.dpr, c.px(x), c.px(y))
	c.r.Fill()
}

func (c *Context) StrokeCircle(x, y, radius float64, col drawing.Color, width float64) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width * c.dpr)
	c.r.Circle(radius*c.dpr, c.px(x), c.px(y))
	c.r.Stroke()
}

// MeasureText returns the advance width of body in CSS pixels.
func (c *Context) MeasureText(body string, size float64) float64 {
	c.r.ResetStyle()
	c.r.SetFontSize(size)
	return float64(c.r.MeasureText(body).Width()) / c.dpr
}

// Text draws body with its baseline at y, anchored at x according to f.Align.
func (c *Context) Text(body string, x, y float64, f Font) {
	if body == "" {
		return
	}
	switch f.Align {
	case AlignCenter:
		x -= c.MeasureText(body, f.Size) / 2
	case AlignRight:
		x -= c.MeasureText(body, f.Size)
	}
	c.r.ResetStyle()
	c.r.SetFontSize(f.Size)
	c.r.SetFontColor(f.Color)
	c.r.Text(c.escape(body), c.px(x), c.px(y))
}

// RotatedText draws body centered on (cx, cy) and rotated by radians.
func (c *Context) RotatedText(body string, cx, cy, radians float64, f Font) {
	if body == "" {
		return
	}
	half := c.MeasureText(body, f.Size) / 2
	x := cx - math.Cos(radians)*half
	y := cy - math.Sin(radians)*half
	c.r.ResetStyle()
	c.r.SetFontSize(f.Size)
	c.r.SetFontColor(f.Color)
	c.r.SetTextRotation(radians)
	c.r.Text(c.escape(body), c.px(x), c.px(y))
	c.r.ClearTextRotation()
}

func (c *Context) escape(body string) string {
	if c.s.Format == SVG {
		return html.EscapeString(body)
	}
	return body
}

// Finish encodes the frame into the surface.
func (c *Context) Finish() error {
	var buf bytes.Buffer
	if err := c.r.Save(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", c.s.Format, err)
	}
	c.s.data = buf.Bytes()
	return nil
}
