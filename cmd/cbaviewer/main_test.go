package main

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/CBACharts/src/dashboard"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/notebook"
	"github.com/iafilius/CBACharts/src/page"
)

func records() []decision.Record {
	return []decision.Record{
		{"name": "A", "cost": 10, "total": 5},
		{"name": "B", "cost": 30, "total": 10},
		{"cost": 1, "total": 100},
	}
}

func TestNotebookSnapshot(t *testing.T) {
	snap := notebookSnapshot(records(), "")
	if snap.Winner != "A" {
		t.Fatalf("nameless rows must not win, got %q", snap.Winner)
	}
	want := "Alternativa recomendada: **A** (2.000000 por unidad de ventaja)."
	if snap.Text != want {
		t.Fatalf("got %q want %q", snap.Text, want)
	}

	snap = notebookSnapshot(records(), "Se recomienda A porque cuesta menos.")
	if snap.Text != "Se recomienda **A** porque cuesta menos." {
		t.Fatalf("advice should bold the winner once: %q", snap.Text)
	}
	snap = notebookSnapshot(records(), "Se recomienda **A** ya.")
	if snap.Text != "Se recomienda **A** ya." {
		t.Fatalf("existing markup must be kept: %q", snap.Text)
	}
	if s := notebookSnapshot(nil, ""); !s.Empty() {
		t.Fatalf("no rows, nothing to save: %+v", s)
	}
}

func TestNotebookSegments(t *testing.T) {
	segs := notebookSegments("Elegimos **B** hoy")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	mid := segs[1].(*widget.TextSegment)
	if mid.Text != "B" || mid.Style != widget.RichTextStyleStrong {
		t.Fatalf("middle segment should be strong B: %+v", mid)
	}
	if first := segs[0].(*widget.TextSegment); first.Style != widget.RichTextStyleInline || first.Text != "Elegimos " {
		t.Fatalf("unexpected first segment: %+v", first)
	}

	if got := winnerSegments(notebook.Snapshot{}); len(got) != 1 {
		t.Fatalf("empty notebook shows a placeholder, got %d segments", len(got))
	}
	if got := winnerSegments(notebook.Snapshot{Text: "x"}); got != nil {
		t.Fatalf("no winner, no winner line")
	}
	got := winnerSegments(notebook.Snapshot{Winner: "A"})
	if len(got) != 2 || got[1].(*widget.TextSegment).Text != "A" {
		t.Fatalf("winner line wrong: %+v", got)
	}
}

func TestNewDashboardScalesFrames(t *testing.T) {
	raw, err := decision.EncodeItems(decision.Normalize(records()))
	if err != nil {
		t.Fatal(err)
	}
	cfg := dashboard.DefaultConfig()
	d := newDashboard(raw, 600, 2, cfg)
	defer d.Close()
	if d.Renders() != 1 {
		t.Fatalf("expected the initial draw, got %d", d.Renders())
	}
	img := decodeFrame(t, d.Frame(cfg.RatioCanvasID))
	if img.Bounds().Dx() != 1200 || img.Bounds().Dy() != 450 {
		t.Fatalf("expected a 1200x450 HiDPI frame, got %v", img.Bounds())
	}
	if d.Window().ListenerCount(page.Resize) != 1 {
		t.Fatalf("resize listener should be attached")
	}
}

func TestSetFrameIgnoresEmptyData(t *testing.T) {
	img := newChartImage()
	before := img.Image
	setFrame(img, nil, 1)
	if img.Image != before {
		t.Fatalf("empty frame must not replace the image")
	}
	setFrame(img, []byte("not a png"), 1)
	if img.Image != before {
		t.Fatalf("undecodable frame must not replace the image")
	}
	if c := before.At(0, 0); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("placeholder should be blank white, got %v", c)
	}
}

func decodeFrame(t *testing.T, data []byte) image.Image {
	t.Helper()
	img := newChartImage()
	setFrame(img, data, 2)
	if img.Image == nil || len(data) == 0 {
		t.Fatalf("no frame")
	}
	return img.Image
}
