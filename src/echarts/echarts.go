package echarts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/page"
	"github.com/iafilius/CBACharts/src/render"
)

// ErrDestroyed is returned when rendering an instance that was already torn down.
var ErrDestroyed = errors.New("chart instance destroyed")

// Kind is the chart type an instance was built as.
type Kind int

const (
	RatioBar Kind = iota
	CostBenefit
)

func (k Kind) String() string {
	if k == CostBenefit {
		return "cost-benefit"
	}
	return "ratio-bar"
}

// Fixed grid margins in CSS pixels so element lookups can map values to pixels.
const (
	gridLeft   = 64.0
	gridRight  = 32.0
	gridTop    = 32.0
	gridBottom = 48.0

	defaultWidth      = 800.0
	defaultSymbolSize = 10
	hitSlack          = 3.0
)

// Options configures a library chart.
type Options struct {
	Title  string
	Width  float64
	Height float64
	XLabel string
	YLabel string
	// SymbolSize is the marker diameter of data vertices.
	SymbolSize int
	LineWidth  float32
}

func (o Options) withDefaults(k Kind) Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = o.Width * 3 / 8
	}
	if o.SymbolSize <= 0 {
		o.SymbolSize = defaultSymbolSize
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 2
	}
	if k == CostBenefit {
		if o.XLabel == "" {
			o.XLabel = "Costo (S/)"
		}
		if o.YLabel == "" {
			o.YLabel = "Ventaja total"
		}
	} else if o.YLabel == "" {
		o.YLabel = "Ratio costo / ventaja"
	}
	return o
}

// Element is a chart element as reported by the library's hit-testing. For vector
// series DataIndex 0 is the origin vertex and 1 the data vertex.
type Element struct {
	SeriesIndex int
	DataIndex   int
	Name        string
	Cost        float64
	Total       float64
	Ratio       decision.Num
	Color       string
	X, Y        float64
}

type charter interface {
	components.Charter
	Render(w io.Writer) error
}

// Instance is one built library chart bound to a canvas.
type Instance struct {
	id       string
	canvasID string
	kind     Kind
	opts     Options
	chart    charter

	xMax, yMax float64
	elements   []Element

	mu        sync.Mutex
	destroyed bool
}

func (in *Instance) ID() string       { return in.id }
func (in *Instance) CanvasID() string { return in.canvasID }
func (in *Instance) Kind() Kind       { return in.kind }

// Destroy releases the instance; it is safe to call more than once.
func (in *Instance) Destroy() {
	in.mu.Lock()
	in.destroyed = true
	in.mu.Unlock()
}

func (in *Instance) Destroyed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.destroyed
}

// Render writes the standalone chart HTML.
func (in *Instance) Render(w io.Writer) error {
	if in.Destroyed() {
		return ErrDestroyed
	}
	if err := in.chart.Render(w); err != nil {
		return fmt.Errorf("render %s chart %s: %w", in.kind, in.canvasID, err)
	}
	return nil
}

func (in *Instance) plot() (x, y, w, h float64) {
	return gridLeft, gridTop, math.Max(1, in.opts.Width-gridLeft-gridRight), math.Max(1, in.opts.Height-gridTop-gridBottom)
}

// ElementsAt reports the elements under the CSS pixel (x, y), nearest first.
// Bars hit anywhere inside their category band; vector vertices within the symbol
// radius plus a small slack.
func (in *Instance) ElementsAt(x, y float64) []Element {
	if in.Destroyed() {
		return nil
	}
	px, py, pw, ph := in.plot()
	if in.kind == RatioBar {
		n := len(in.elements)
		if n == 0 || x < px || x > px+pw || y < py || y > py+ph {
			return nil
		}
		i := int((x - px) / (pw / float64(n)))
		if i >= n {
			i = n - 1
		}
		return []Element{in.elements[i]}
	}
	radius := float64(in.opts.SymbolSize)/2 + hitSlack
	type hit struct {
		el Element
		d  float64
	}
	var hits []hit
	for _, el := range in.elements {
		if d := math.Hypot(el.X-x, el.Y-y); d <= radius {
			hits = append(hits, hit{el, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].d < hits[j].d })
	out := make([]Element, len(hits))
	for i, h := range hits {
		out[i] = h.el
	}
	return out
}

// Legend returns one swatch per plotted item.
func (in *Instance) Legend() []page.LegendEntry {
	var out []page.LegendEntry
	for _, el := range in.elements {
		if in.kind == CostBenefit && el.DataIndex != 1 {
			continue
		}
		out = append(out, page.LegendEntry{Color: el.Color, Label: el.Name})
	}
	return out
}

// BuildLegend replaces the content of container with swatch and label pairs.
func BuildLegend(container *page.Legend, entries []page.LegendEntry) {
	if container == nil {
		return
	}
	container.Clear()
	for _, e := range entries {
		container.Append(e)
	}
}

// Library builds declarative charts with go-echarts.
type Library struct {
	// AssetsHost overrides where the echarts script is loaded from.
	AssetsHost string
}

func NewLibrary() *Library { return &Library{} }

func (l *Library) init(k Kind, o Options) (string, []charts.GlobalOpts) {
	id := uuid.NewString()
	init := opts.Initialization{
		Width:     fmt.Sprintf("%.0fpx", o.Width),
		Height:    fmt.Sprintf("%.0fpx", o.Height),
		ChartID:   "cba_" + strings.ReplaceAll(id, "-", ""),
		PageTitle: o.Title,
	}
	if l.AssetsHost != "" {
		init.AssetsHost = l.AssetsHost
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(init),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{
			Left:   fmt.Sprintf("%.0f", gridLeft),
			Right:  fmt.Sprintf("%.0f", gridRight),
			Top:    fmt.Sprintf("%.0f", gridTop),
			Bottom: fmt.Sprintf("%.0f", gridBottom),
		}),
	}
	if o.Title != "" {
		global = append(global, charts.WithTitleOpts(opts.Title{Title: o.Title}))
	}
	return id, global
}

// RatioBar builds the ratio bar chart: one bar per item. Missing and zero ratios are
// dimmed; only a missing one is sent as "-".
func (l *Library) RatioBar(canvasID string, items []decision.Item, o Options) *Instance {
	o = o.withDefaults(RatioBar)
	id, global := l.init(RatioBar, o)
	in := &Instance{id: id, canvasID: canvasID, kind: RatioBar, opts: o}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(global,
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: ratioTooltip}),
		charts.WithYAxisOpts(opts.YAxis{Name: o.YLabel, Type: "value"}),
	)...)

	names := make([]string, len(items))
	data := make([]opts.BarData, len(items))
	for i, it := range items {
		names[i] = it.Name
		color := render.PaletteColor(i)
		d := opts.BarData{Name: it.Name, ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(render.FullAlpha)}}
		v, ok := it.Ratio.Get()
		switch {
		case !ok:
			d.Value = "-"
			d.ItemStyle.Opacity = opts.Float(render.DimAlpha)
		case v == 0:
			d.Value = 0.0
			d.ItemStyle.Opacity = opts.Float(render.DimAlpha)
		default:
			d.Value = v
		}
		data[i] = d
		in.elements = append(in.elements, Element{DataIndex: i, Name: it.Name, Cost: it.Cost.Or(0), Total: it.Total.Or(0), Ratio: it.Ratio, Color: color})
	}
	bar.SetXAxis(names).AddSeries("ratio", data)
	in.chart = bar
	return in
}

// CostBenefit builds the vector chart: one two-point line series per item from the
// origin to (cost, total). Only the data vertex shows a symbol.
func (l *Library) CostBenefit(canvasID string, items []decision.Item, o Options) *Instance {
	o = o.withDefaults(CostBenefit)
	id, global := l.init(CostBenefit, o)
	in := &Instance{id: id, canvasID: canvasID, kind: CostBenefit, opts: o, xMax: 1, yMax: 1}

	var plotted []int
	for i, it := range items {
		if !it.Plottable() {
			continue
		}
		plotted = append(plotted, i)
		in.xMax = math.Max(in.xMax, it.Cost.Or(0))
		in.yMax = math.Max(in.yMax, it.Total.Or(0))
	}
	in.xMax = niceCeil(in.xMax * 1.1)
	in.yMax = niceCeil(in.yMax * 1.1)

	line := charts.NewLine()
	line.SetGlobalOptions(append(global,
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: vectorTooltip}),
		charts.WithXAxisOpts(opts.XAxis{Name: o.XLabel, Type: "value", Min: 0, Max: in.xMax,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Type: "dashed"}}}),
		charts.WithYAxisOpts(opts.YAxis{Name: o.YLabel, Type: "value", Min: 0, Max: in.yMax,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Type: "dashed"}}}),
	)...)

	px, py, pw, ph := in.plot()
	ox, oy := px, py+ph
	for series, idx := range plotted {
		it := items[idx]
		color := render.PaletteColor(idx)
		cost, total := it.Cost.Or(0), it.Total.Or(0)
		var ratio interface{}
		if r, ok := it.Ratio.Get(); ok {
			ratio = r
		}
		data := []opts.LineData{
			{Value: []interface{}{0, 0, ratio}, Symbol: "none"},
			{Value: []interface{}{cost, total, ratio}, Symbol: "circle", SymbolSize: o.SymbolSize},
		}
		line.AddSeries(it.Name, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: o.LineWidth}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
		x := px + cost/in.xMax*pw
		y := py + ph - total/in.yMax*ph
		base := Element{SeriesIndex: series, Name: it.Name, Cost: cost, Total: total, Ratio: it.Ratio, Color: color}
		origin, vertex := base, base
		origin.X, origin.Y = ox, oy
		vertex.DataIndex, vertex.X, vertex.Y = 1, x, y
		in.elements = append(in.elements, origin, vertex)
	}
	in.chart = line
	return in
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= v {
			return m * mag
		}
	}
	return 10 * mag
}

// Page renders the live instances into a single go-echarts page.
func Page(w io.Writer, title string, instances ...*Instance) error {
	p := components.NewPage()
	if title != "" {
		p.SetPageTitle(title)
	}
	for _, in := range instances {
		if in == nil || in.Destroyed() {
			continue
		}
		p.AddCharts(in.chart)
	}
	if err := p.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
