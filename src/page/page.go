package page

import (
	"sync"

	"github.com/iafilius/CBACharts/src/surface"
)

// Event is a window event name.
type Event string

const Resize Event = "resize"

// Window carries the device pixel ratio and window level event listeners.
type Window struct {
	mu        sync.Mutex
	dpr       float64
	listeners map[Event][]func()
}

func NewWindow(dpr float64) *Window {
	return &Window{dpr: dpr, listeners: map[Event][]func(){}}
}

// DevicePixelRatio returns the ratio, 1 when unknown.
func (w *Window) DevicePixelRatio() float64 {
	if w == nil {
		return 1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return surface.NormalizeDPR(w.dpr)
}

func (w *Window) SetDevicePixelRatio(dpr float64) {
	w.mu.Lock()
	w.dpr = dpr
	w.mu.Unlock()
}

func (w *Window) AddEventListener(ev Event, fn func()) {
	w.mu.Lock()
	w.listeners[ev] = append(w.listeners[ev], fn)
	w.mu.Unlock()
}

// Dispatch runs the listeners for ev synchronously, outside the window lock.
func (w *Window) Dispatch(ev Event) {
	w.mu.Lock()
	fns := append([]func(){}, w.listeners[ev]...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (w *Window) ListenerCount(ev Event) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[ev])
}

// Document holds the page elements a dashboard works with, addressed by id.
// Lookups of unknown ids return nil.
type Document struct {
	mu       sync.RWMutex
	canvases map[string]*surface.Surface
	tooltips map[string]*Tooltip
	legends  map[string]*Legend
	scripts  map[string]string
	clicks   map[string][]func(x, y float64)
}

func NewDocument() *Document {
	return &Document{
		canvases: map[string]*surface.Surface{},
		tooltips: map[string]*Tooltip{},
		legends:  map[string]*Legend{},
		scripts:  map[string]string{},
		clicks:   map[string][]func(x, y float64){},
	}
}

func (d *Document) AddCanvas(s *surface.Surface) *surface.Surface {
	d.mu.Lock()
	d.canvases[s.ID] = s
	d.mu.Unlock()
	return s
}

func (d *Document) Canvas(id string) *surface.Surface {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.canvases[id]
}

// Resolve accepts a canvas or a canvas id and returns the canvas, nil when absent.
func (d *Document) Resolve(target interface{}) *surface.Surface {
	switch t := target.(type) {
	case *surface.Surface:
		return t
	case string:
		return d.Canvas(t)
	default:
		return nil
	}
}

// AddClickListener attaches fn to clicks on the element id.
func (d *Document) AddClickListener(id string, fn func(x, y float64)) {
	d.mu.Lock()
	d.clicks[id] = append(d.clicks[id], fn)
	d.mu.Unlock()
}

// Click delivers a click at CSS pixel (x, y) to the listeners of id.
func (d *Document) Click(id string, x, y float64) {
	d.mu.RLock()
	fns := append([]func(x, y float64){}, d.clicks[id]...)
	d.mu.RUnlock()
	for _, fn := range fns {
		fn(x, y)
	}
}

func (d *Document) ClickListenerCount(id string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.clicks[id])
}

func (d *Document) AddTooltip(id string) *Tooltip {
	t := &Tooltip{ID: id}
	d.mu.Lock()
	d.tooltips[id] = t
	d.mu.Unlock()
	return t
}

func (d *Document) Tooltip(id string) *Tooltip {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tooltips[id]
}

func (d *Document) AddLegend(id string) *Legend {
	l := &Legend{ID: id}
	d.mu.Lock()
	d.legends[id] = l
	d.mu.Unlock()
	return l
}

func (d *Document) Legend(id string) *Legend {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.legends[id]
}

// SetScript embeds a JSON document under id, like a <script type="application/json"> tag.
func (d *Document) SetScript(id, content string) {
	d.mu.Lock()
	d.scripts[id] = content
	d.mu.Unlock()
}

// Script returns the text of the embedded document and whether it exists.
func (d *Document) Script(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.scripts[id]
	return s, ok
}
