package dashboard

import (
	"sync"

	"github.com/iafilius/CBACharts/src/echarts"
	"github.com/iafilius/CBACharts/src/render"
)

// Entry is what the dashboard remembers about one canvas after drawing it.
type Entry struct {
	Geometry *render.Geometry
	Bars     *render.BarLayout
	Instance *echarts.Instance
}

// Registry maps canvas ids to their render state.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

func (r *Registry) entry(id string) *Entry {
	e, ok := r.entries[id]
	if !ok {
		e = &Entry{}
		r.entries[id] = e
	}
	return e
}

func (r *Registry) SetGeometry(id string, g render.Geometry) {
	r.mu.Lock()
	r.entry(id).Geometry = &g
	r.mu.Unlock()
}

func (r *Registry) SetBars(id string, l render.BarLayout) {
	r.mu.Lock()
	r.entry(id).Bars = &l
	r.mu.Unlock()
}

// SetInstance binds a library instance to id, destroying any previous one.
func (r *Registry) SetInstance(id string, in *echarts.Instance) {
	r.mu.Lock()
	e := r.entry(id)
	if e.Instance != nil && e.Instance != in {
		e.Instance.Destroy()
	}
	e.Instance = in
	r.mu.Unlock()
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Teardown destroys the instance bound to id and forgets its state.
func (r *Registry) Teardown(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		if e.Instance != nil {
			e.Instance.Destroy()
		}
		delete(r.entries, id)
	}
}

// Close tears down every canvas.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Teardown(id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
