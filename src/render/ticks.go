package render

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// TickLabel formats an axis value compactly; thousands get separators.
func TickLabel(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 1000:
		return humanize.Commaf(math.Round(v))
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av == 0:
		return "0"
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
}

// GridValues splits [0,max] into n equal divisions and returns the n+1 boundaries.
func GridValues(max float64, n int) []float64 {
	if n < 1 {
		return []float64{0, max}
	}
	out := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		out[i] = max * float64(i) / float64(n)
	}
	return out
}
