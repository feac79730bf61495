package main

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// tapFunc resolves a tap at pos inside an overlay of the given size. It returns the
// tooltip lines and where to anchor them, or ok=false on a miss.
type tapFunc func(canvasID string, pos fyne.Position, size fyne.Size) (lines []string, at fyne.Position, ok bool)

// chartOverlay sits on top of a chart image and shows the tooltip of the last tap.
type chartOverlay struct {
	widget.BaseWidget
	canvasID string
	onTap    tapFunc
	lines    []string
	at       fyne.Position
}

func newChartOverlay(canvasID string, onTap tapFunc) *chartOverlay {
	c := &chartOverlay{canvasID: canvasID, onTap: onTap}
	c.ExtendBaseWidget(c)
	return c
}

func (c *chartOverlay) Tapped(ev *fyne.PointEvent) {
	if c.onTap == nil {
		return
	}
	lines, at, ok := c.onTap(c.canvasID, ev.Position, c.Size())
	if !ok {
		c.clear()
		return
	}
	c.lines = lines
	c.at = at
	c.Refresh()
}

func (c *chartOverlay) clear() {
	if c.lines == nil {
		return
	}
	c.lines = nil
	c.Refresh()
}

var _ fyne.Tappable = (*chartOverlay)(nil)

func (c *chartOverlay) CreateRenderer() fyne.WidgetRenderer {
	// transparent background so taps land anywhere on the chart
	bg := canvas.NewRectangle(color.RGBA{R: 0, G: 0, B: 0, A: 0})
	dot := canvas.NewCircle(color.RGBA{R: 240, G: 240, B: 240, A: 220})
	label := widget.NewRichText()
	label.Wrapping = fyne.TextWrapOff
	labelBG := canvas.NewRectangle(color.RGBA{R: 0, G: 0, B: 0, A: 170})
	r := &overlayRenderer{c: c, bg: bg, dot: dot, labelBG: labelBG, label: label}
	r.objs = []fyne.CanvasObject{bg, dot, labelBG, label}
	return r
}

type overlayRenderer struct {
	c       *chartOverlay
	bg      *canvas.Rectangle
	dot     *canvas.Circle
	labelBG *canvas.Rectangle
	label   *widget.RichText
	objs    []fyne.CanvasObject
}

func (r *overlayRenderer) Destroy() {}

func (r *overlayRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if len(r.c.lines) == 0 {
		r.label.Segments = nil
		r.dot.Move(fyne.NewPos(-10, -10))
		r.labelBG.Resize(fyne.NewSize(0, 0))
		r.labelBG.Move(fyne.NewPos(-1000, -1000))
		r.label.Move(fyne.NewPos(-1000, -1000))
		return
	}
	r.label.Segments = []widget.RichTextSegment{&widget.TextSegment{Text: strings.Join(r.c.lines, "\n")}}
	r.label.Refresh()

	x, y := r.c.at.X, r.c.at.Y
	r.dot.Resize(fyne.NewSize(6, 6))
	r.dot.Move(fyne.NewPos(x-3, y-3))

	pad := float32(6)
	ts := r.label.MinSize()
	bgW := ts.Width + 2*pad
	bgH := ts.Height + 2*pad
	tx, ty := x+8, y+8
	if tx+bgW > size.Width {
		tx = size.Width - bgW
	}
	if ty+bgH > size.Height {
		ty = size.Height - bgH
	}
	if tx < 0 {
		tx = 0
	}
	if ty < 0 {
		ty = 0
	}
	r.labelBG.Resize(fyne.NewSize(bgW, bgH))
	r.labelBG.Move(fyne.NewPos(tx, ty))
	r.label.Move(fyne.NewPos(tx+pad, ty+pad))
}

func (r *overlayRenderer) MinSize() fyne.Size           { return fyne.NewSize(10, 10) }
func (r *overlayRenderer) Objects() []fyne.CanvasObject { return r.objs }

func (r *overlayRenderer) Refresh() {
	r.Layout(r.c.Size())
	r.dot.FillColor = theme.Color(theme.ColorNamePrimary)
	r.bg.Refresh()
	r.dot.Refresh()
	r.labelBG.Refresh()
	r.label.Refresh()
}
