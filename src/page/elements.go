package page

import (
	"sync"
	"unicode/utf8"
)

// Approximate tooltip metrics used to size the box before it is laid out.
const (
	tooltipCharWidth  = 7.0
	tooltipLineHeight = 18.0
	tooltipPadding    = 8.0
)

// Tooltip is a floating tooltip element positioned in its chart container.
type Tooltip struct {
	ID string

	mu        sync.Mutex
	lines     []string
	visible   bool
	x, y      float64
	container [2]float64
}

// SetContainer records the chart container size used for clamping.
func (t *Tooltip) SetContainer(w, h float64) {
	t.mu.Lock()
	t.container = [2]float64{w, h}
	t.mu.Unlock()
}

func (t *Tooltip) Container() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.container[0], t.container[1]
}

// Show sets content and position and makes the tooltip visible.
func (t *Tooltip) Show(lines []string, x, y float64) {
	t.mu.Lock()
	t.lines = append([]string(nil), lines...)
	t.x, t.y = x, y
	t.visible = true
	t.mu.Unlock()
}

func (t *Tooltip) Hide() {
	t.mu.Lock()
	t.visible = false
	t.mu.Unlock()
}

func (t *Tooltip) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

func (t *Tooltip) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *Tooltip) Position() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.x, t.y
}

// EstimateSize approximates the rendered box of lines.
func EstimateSize(lines []string) (float64, float64) {
	longest := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > longest {
			longest = n
		}
	}
	return float64(longest)*tooltipCharWidth + 2*tooltipPadding,
		float64(len(lines))*tooltipLineHeight + 2*tooltipPadding
}

// LegendEntry is one swatch and label pair.
type LegendEntry struct {
	Color string
	Label string
}

// Legend is a container element for legend swatches.
type Legend struct {
	ID string

	mu      sync.Mutex
	entries []LegendEntry
}

func (l *Legend) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

func (l *Legend) Append(e LegendEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

func (l *Legend) Entries() []LegendEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LegendEntry(nil), l.entries...)
}
