package interact

import (
	"fmt"
	"math"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/page"
)

const (
	tooltipOffset = 12.0
	tooltipMargin = 8.0
)

// Place positions a w x h tooltip at the cursor plus an offset, clamped so it stays
// at least tooltipMargin inside the container. Containers with no size only get the
// offset.
func Place(cx, cy, w, h, containerW, containerH float64) (float64, float64) {
	return clampAxis(cx+tooltipOffset, w, containerW), clampAxis(cy+tooltipOffset, h, containerH)
}

func clampAxis(v, size, container float64) float64 {
	if container <= 0 {
		return v
	}
	v = math.Min(v, container-size-tooltipMargin)
	return math.Max(v, tooltipMargin)
}

// ShowAt fills tip with lines and places it next to the cursor.
func ShowAt(tip *page.Tooltip, lines []string, cx, cy float64) {
	if tip == nil {
		return
	}
	w, h := page.EstimateSize(lines)
	cw, ch := tip.Container()
	x, y := Place(cx, cy, w, h, cw, ch)
	tip.Show(lines, x, y)
}

// Money formats an amount as soles with two decimals.
func Money(v float64) string {
	return "S/ " + humanize.FormatFloat("#,###.##", v)
}

// ScatterTooltip is the text for a cost/benefit point.
func ScatterTooltip(name string, cost, total float64, ratio decision.Num) []string {
	return []string{
		name,
		"Costo: " + Money(cost),
		fmt.Sprintf("Ventaja: %.2f", total),
		"Ratio: " + RatioText(ratio),
	}
}

// RatioTooltip is the text for a ratio bar.
func RatioTooltip(name string, ratio decision.Num) []string {
	if v, ok := ratio.Get(); ok {
		return []string{name, fmt.Sprintf("S/ %.6f", v)}
	}
	return []string{name, "Sin dato"}
}

// RatioText formats a ratio with six decimals, or "Sin dato".
func RatioText(ratio decision.Num) string {
	if v, ok := ratio.Get(); ok {
		return fmt.Sprintf("%.6f", v)
	}
	return "Sin dato"
}

// Binder remembers which canvases already have their click handler attached.
type Binder struct {
	mu    sync.Mutex
	bound map[string]bool
}

// Bind runs attach the first time id is seen and reports whether it did.
func (b *Binder) Bind(id string, attach func()) bool {
	b.mu.Lock()
	if b.bound == nil {
		b.bound = map[string]bool{}
	}
	if b.bound[id] {
		b.mu.Unlock()
		return false
	}
	b.bound[id] = true
	b.mu.Unlock()
	if attach != nil {
		attach()
	}
	return true
}

func (b *Binder) Bound(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bound[id]
}
