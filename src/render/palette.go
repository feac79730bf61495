package render

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette is the fixed series palette, cycled by item index.
var Palette = []string{"#2563eb", "#16a34a", "#f59e0b", "#dc2626", "#7c3aed", "#0891b2", "#db2777"}

// PaletteColor returns the hex color for item i.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// WithAlpha parses a hex color and applies an opacity in [0,1].
func WithAlpha(hex string, alpha float64) drawing.Color {
	alpha = math.Max(0, math.Min(1, alpha))
	return drawing.ColorFromHex(hex).WithAlpha(uint8(math.Round(alpha * 255)))
}

var (
	background = drawing.ColorWhite
	inkColor   = drawing.ColorFromHex("334155")
	mutedInk   = drawing.ColorFromHex("64748b")
	axisColor  = drawing.ColorFromHex("94a3b8")
	gridColor  = drawing.ColorFromHex("e2e8f0")
)
