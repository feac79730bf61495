package dashboard

import (
	"sync"
	"time"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/echarts"
	"github.com/iafilius/CBACharts/src/interact"
	"github.com/iafilius/CBACharts/src/logging"
	"github.com/iafilius/CBACharts/src/page"
	"github.com/iafilius/CBACharts/src/render"
	"github.com/iafilius/CBACharts/src/surface"
)

// Library is a declarative chart backend. A nil Library selects the built-in renderers.
type Library interface {
	RatioBar(canvasID string, items []decision.Item, o echarts.Options) *echarts.Instance
	CostBenefit(canvasID string, items []decision.Item, o echarts.Options) *echarts.Instance
}

// Element ids and tuning of a dashboard page.
type Config struct {
	PayloadID      string
	RatioCanvasID  string
	VectorCanvasID string
	TooltipID      string
	LegendID       string
	Debounce       time.Duration
	HitThreshold   float64
	Bar            render.BarOptions
	Scatter        render.ScatterOptions
}

const DefaultDebounce = 150 * time.Millisecond

func DefaultConfig() Config {
	return Config{
		PayloadID:      "dashboard-data",
		RatioCanvasID:  "ratio-chart",
		VectorCanvasID: "cost-benefit-chart",
		TooltipID:      "chart-tooltip",
		LegendID:       "cost-benefit-legend",
		Debounce:       DefaultDebounce,
		HitThreshold:   interact.DefaultThreshold,
	}
}

// Dashboard wires payload parsing, chart dispatch and interaction for one page.
// Its methods serialize on a single lock, like a UI thread.
type Dashboard struct {
	cfg Config
	doc *page.Document
	win *page.Window
	lib Library
	reg *Registry

	binder interact.Binder

	mu             sync.Mutex
	items          []decision.Item
	resizeAttached bool
	timer          *time.Timer
	renders        int
	closed         bool
}

// New builds a dashboard over doc and win. lib may be nil.
func New(doc *page.Document, win *page.Window, lib Library, cfg Config) *Dashboard {
	def := DefaultConfig()
	if cfg.PayloadID == "" {
		cfg.PayloadID = def.PayloadID
	}
	if cfg.RatioCanvasID == "" {
		cfg.RatioCanvasID = def.RatioCanvasID
	}
	if cfg.VectorCanvasID == "" {
		cfg.VectorCanvasID = def.VectorCanvasID
	}
	if cfg.TooltipID == "" {
		cfg.TooltipID = def.TooltipID
	}
	if cfg.LegendID == "" {
		cfg.LegendID = def.LegendID
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.HitThreshold <= 0 {
		cfg.HitThreshold = def.HitThreshold
	}
	return &Dashboard{cfg: cfg, doc: doc, win: win, lib: lib, reg: NewRegistry()}
}

func (d *Dashboard) Config() Config           { return d.cfg }
func (d *Dashboard) Registry() *Registry      { return d.reg }
func (d *Dashboard) Document() *page.Document { return d.doc }
func (d *Dashboard) Window() *page.Window     { return d.win }
func (d *Dashboard) UsesLibrary() bool        { return d.lib != nil }

// Items returns the items of the last draw.
func (d *Dashboard) Items() []decision.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]decision.Item(nil), d.items...)
}

// Renders counts completed draw passes.
func (d *Dashboard) Renders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renders
}

// ParsePayload reads the embedded payload document and normalizes it. A missing or
// malformed document yields no items.
func (d *Dashboard) ParsePayload() []decision.Item {
	raw, ok := d.doc.Script(d.cfg.PayloadID)
	if !ok {
		return []decision.Item{}
	}
	return decision.Normalize(decision.ParsePayload(raw))
}

// DrawCharts renders both charts for items. Canvases missing from the document
// are skipped.
func (d *Dashboard) DrawCharts(items []decision.Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawLocked(items)
}

// InitCharts parses the payload, draws, and attaches the debounced resize listener
// once per dashboard.
func (d *Dashboard) InitCharts() []decision.Item {
	items := d.ParsePayload()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawLocked(items)
	if !d.resizeAttached && d.win != nil {
		d.resizeAttached = true
		d.win.AddEventListener(page.Resize, d.onResize)
	}
	return items
}

func (d *Dashboard) onResize() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.cfg.Debounce, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return
		}
		d.drawLocked(d.items)
	})
}

func (d *Dashboard) dpr() float64 {
	if d.win == nil {
		return 1
	}
	return d.win.DevicePixelRatio()
}

func (d *Dashboard) drawLocked(items []decision.Item) {
	defer logging.TimeTrack(time.Now(), "dashboard draw")
	d.items = items
	dpr := d.dpr()
	if s := d.doc.Resolve(d.cfg.RatioCanvasID); s != nil {
		d.reg.Teardown(s.ID)
		if d.lib != nil {
			w, h := s.CSSSize(dpr)
			d.reg.SetInstance(s.ID, d.lib.RatioBar(s.ID, items, echarts.Options{Width: w, Height: h, YLabel: d.cfg.Bar.YTitle}))
		} else if l, err := render.RenderBars(s, dpr, items, d.cfg.Bar); err != nil {
			logging.Warnf("dashboard: ratio chart %s: %v", s.ID, err)
		} else {
			d.reg.SetBars(s.ID, l)
		}
		d.bindLocked(s.ID)
	}
	if s := d.doc.Resolve(d.cfg.VectorCanvasID); s != nil {
		d.reg.Teardown(s.ID)
		if d.lib != nil {
			w, h := s.CSSSize(dpr)
			in := d.lib.CostBenefit(s.ID, items, echarts.Options{
				Width: w, Height: h,
				XLabel: d.cfg.Scatter.XLabel, YLabel: d.cfg.Scatter.YLabel,
				SymbolSize: int(2 * d.cfg.Scatter.PointRadius),
			})
			d.reg.SetInstance(s.ID, in)
			echarts.BuildLegend(d.doc.Legend(d.cfg.LegendID), in.Legend())
		} else if g, err := render.RenderScatter(s, dpr, items, d.cfg.Scatter); err != nil {
			logging.Warnf("dashboard: vector chart %s: %v", s.ID, err)
		} else {
			d.reg.SetGeometry(s.ID, g)
		}
		d.bindLocked(s.ID)
	}
	d.renders++
	logging.Debugf("dashboard: drew %d items (library=%v, dpr=%.2f)", len(items), d.lib != nil, dpr)
}

func (d *Dashboard) bindLocked(id string) {
	d.binder.Bind(id, func() {
		d.doc.AddClickListener(id, func(x, y float64) { d.Click(id, x, y) })
	})
}

// Click resolves a click on a chart canvas into tooltip lines and updates the
// tooltip element. Misses hide the tooltip and return false.
func (d *Dashboard) Click(canvasID string, x, y float64) ([]string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lines, ok := d.resolveLocked(canvasID, x, y)
	tip := d.doc.Tooltip(d.cfg.TooltipID)
	if tip == nil {
		return lines, ok
	}
	if !ok {
		tip.Hide()
		return nil, false
	}
	if s := d.doc.Canvas(canvasID); s != nil {
		tip.SetContainer(s.CSSSize(d.dpr()))
	}
	interact.ShowAt(tip, lines, x, y)
	return lines, true
}

func (d *Dashboard) resolveLocked(canvasID string, x, y float64) ([]string, bool) {
	e, ok := d.reg.Get(canvasID)
	if !ok {
		return nil, false
	}
	switch {
	case e.Instance != nil:
		els := e.Instance.ElementsAt(x, y)
		if e.Instance.Kind() == echarts.RatioBar {
			if len(els) == 0 {
				return nil, false
			}
			return interact.RatioTooltip(els[0].Name, els[0].Ratio), true
		}
		el, hit := interact.PickLibraryElement(els)
		if !hit {
			return nil, false
		}
		return interact.ScatterTooltip(el.Name, el.Cost, el.Total, el.Ratio), true
	case e.Geometry != nil:
		p, hit := interact.HitTest(*e.Geometry, x, y, d.cfg.HitThreshold)
		if !hit {
			return nil, false
		}
		return interact.ScatterTooltip(p.Name, p.Cost, p.Total, p.Ratio), true
	case e.Bars != nil:
		i, hit := interact.HitBar(*e.Bars, x, y)
		if !hit {
			return nil, false
		}
		b := e.Bars.Bars[i]
		return interact.RatioTooltip(b.Name, b.Ratio), true
	}
	return nil, false
}

// Instances returns the live library instances in canvas order.
func (d *Dashboard) Instances() []*echarts.Instance {
	var out []*echarts.Instance
	for _, id := range []string{d.cfg.RatioCanvasID, d.cfg.VectorCanvasID} {
		if e, ok := d.reg.Get(id); ok && e.Instance != nil {
			out = append(out, e.Instance)
		}
	}
	return out
}

// Surface returns a chart canvas by id.
func (d *Dashboard) Surface(id string) *surface.Surface { return d.doc.Canvas(id) }

// Layout sets the CSS width of both chart canvases, as a host layout pass would
// before dispatching a resize.
func (d *Dashboard) Layout(cssWidth float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range []string{d.cfg.RatioCanvasID, d.cfg.VectorCanvasID} {
		if s := d.doc.Canvas(id); s != nil {
			s.CSSWidth = cssWidth
		}
	}
}

// Frame copies the last encoded frame of a canvas. It is safe against a
// concurrent debounced redraw.
func (d *Dashboard) Frame(id string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.doc.Canvas(id)
	if s == nil {
		return nil
	}
	return append([]byte(nil), s.Bytes()...)
}

// Close stops pending resize work and tears down every chart.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.reg.Close()
}
