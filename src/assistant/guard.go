package assistant

import (
	"strings"
	"unicode/utf8"
)

// MaxSummaryLength bounds an accepted model answer, in characters, after whitespace
// collapsing.
const MaxSummaryLength = 900

// field-dump markers: the model listed values instead of writing a sentence
var fieldMarkers = []string{"recomendación:", "ratio:", "total:", "costo:", "delta_pct"}

// Accept collapses the model answer to one line and reports whether it reads as a
// single connected recommendation. Rejected answers are replaced by the fallback.
func Accept(content string) (string, bool) {
	text := collapse(content)
	if text == "" || utf8.RuneCountInString(text) > MaxSummaryLength {
		return "", false
	}
	if strings.Contains(text, "- ") {
		return "", false
	}
	lowered := strings.ToLower(text)
	for _, m := range fieldMarkers {
		if strings.Contains(lowered, m) {
			return "", false
		}
	}
	// matches "recomendación" and "recomendada" but not "recomienda"
	if !strings.Contains(lowered, "recomend") {
		return "", false
	}
	return text, true
}
