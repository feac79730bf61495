package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const payload = `{"setup":{"project_name":"Puente"},"dashboard":[{"name":"A","cost":10,"total":5},{"name":"B","cost":30,"total":10},{"name":"C","cost":0,"total":0}]}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRenderWritesAllCharts(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, payload, "render", "-i", "-", "-o", dir, "--width", "400", "--dpr", "2", "--html", "--caption", "Puente")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	for _, name := range []string{"ratio-chart.png", "cost-benefit-chart.png", "interactive.html"} {
		if !strings.Contains(out, filepath.Join(dir, name)) {
			t.Fatalf("output does not list %s:\n%s", name, out)
		}
	}
	f, err := os.Open(filepath.Join(dir, "ratio-chart.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 300 {
		t.Fatalf("expected 800x300 device pixels, got %v", b)
	}
	html, err := os.ReadFile(filepath.Join(dir, "interactive.html"))
	if err != nil || !bytes.Contains(html, []byte("echarts")) {
		t.Fatalf("interactive page missing: %v", err)
	}
}

func TestRenderSVGAndBadFormat(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, payload, "render", "-i", "-", "-o", dir, "--format", "svg"); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "cost-benefit-chart.svg"))
	if err != nil || !bytes.Contains(b, []byte("<svg")) {
		t.Fatalf("svg not written: %v", err)
	}
	if _, err := run(t, payload, "render", "-i", "-", "-o", dir, "--format", "gif"); err == nil {
		t.Fatalf("expected an error for gif")
	}
}

func TestRenderRequiresInput(t *testing.T) {
	if _, err := run(t, "", "render"); err == nil {
		t.Fatalf("expected missing --input error")
	}
}

func TestSummaryTable(t *testing.T) {
	out, err := run(t, payload, "summary", "-i", "-")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	b, a := strings.Index(out, "\nB "), strings.Index(out, "\nA ")
	if b < 0 || a < 0 || b > a {
		t.Fatalf("rows should be sorted by total desc:\n%s", out)
	}
	if !strings.Contains(out, "Recomendada: A (2.000000 por unidad de ventaja)") {
		t.Fatalf("missing winner line:\n%s", out)
	}
	if !strings.Contains(out, "Sin dato") {
		t.Fatalf("zero row should print Sin dato:\n%s", out)
	}
}

func TestSummaryWithAssistantFallback(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	out, err := run(t, payload, "summary", "-i", "-", "--ai", "--env", "")
	if err != nil {
		t.Fatalf("summary --ai: %v", err)
	}
	if !strings.Contains(out, `Para el proyecto "Puente" se recomienda A porque`) {
		t.Fatalf("expected fallback paragraph:\n%s", out)
	}
}
