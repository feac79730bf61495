// Package notebook restores the last saved decision notebook and renders its text.
package notebook

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

const (
	WinnerKey = "cba.lastNotebookWinner"
	TextKey   = "cba.lastNotebookText"
)

// Store is a read-only string preference store. fyne.Preferences satisfies it.
type Store interface {
	String(key string) string
}

// MapStore adapts a plain map, e.g. a config section.
type MapStore map[string]string

func (m MapStore) String(key string) string { return m[key] }

// Snapshot is the persisted notebook state shown next to the charts.
type Snapshot struct {
	Winner string
	Text   string
}

// Empty reports whether nothing was saved.
func (s Snapshot) Empty() bool { return s.Winner == "" && s.Text == "" }

func Load(store Store) Snapshot {
	if store == nil {
		return Snapshot{}
	}
	return Snapshot{
		Winner: strings.TrimSpace(store.String(WinnerKey)),
		Text:   store.String(TextKey),
	}
}

var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// RenderBold escapes text and then turns **x** into <strong>x</strong>. Only bold
// markup survives: any HTML in the input comes out as inert text.
func RenderBold(text string) template.HTML {
	escaped := html.EscapeString(text)
	return template.HTML(boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>"))
}

// Plain strips the bold markers, for surfaces without rich text.
func Plain(text string) string {
	return boldPattern.ReplaceAllString(text, "$1")
}

// Span is a run of notebook text, bold or plain.
type Span struct {
	Text string
	Bold bool
}

// Spans splits text on **x** markers for renderers without HTML.
func Spans(text string) []Span {
	var out []Span
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, Span{Text: text[last:m[0]]})
		}
		out = append(out, Span{Text: text[m[2]:m[3]], Bold: true})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Span{Text: text[last:]})
	}
	return out
}
