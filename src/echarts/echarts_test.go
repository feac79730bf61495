package echarts

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/page"
)

func items(recs ...decision.Record) []decision.Item { return decision.Normalize(recs) }

func TestCostBenefitElements(t *testing.T) {
	lib := NewLibrary()
	in := lib.CostBenefit("vector", items(
		decision.Record{"name": "A", "cost": 10, "total": 5},
		decision.Record{"name": "B", "cost": 0, "total": 0},
	), Options{Width: 800, Height: 300})

	if in.ID() == "" || in.Kind() != CostBenefit || in.CanvasID() != "vector" {
		t.Fatalf("unexpected instance metadata: %q %v %q", in.ID(), in.Kind(), in.CanvasID())
	}
	if len(in.elements) != 2 {
		t.Fatalf("zero row must not produce a series, got %d elements", len(in.elements))
	}
	// xMax = 20, yMax = 10; plot is 704x220 at (64,32)
	els := in.ElementsAt(416, 142)
	if len(els) != 1 || els[0].DataIndex != 1 || els[0].Name != "A" {
		t.Fatalf("expected the data vertex of A, got %+v", els)
	}
	if els[0].Ratio.Or(0) != 2 {
		t.Fatalf("ratio should come from the normalizer, got %v", els[0].Ratio)
	}
	origin := in.ElementsAt(64, 252)
	if len(origin) != 1 || origin[0].DataIndex != 0 {
		t.Fatalf("expected the origin vertex, got %+v", origin)
	}
	if len(in.ElementsAt(600, 40)) != 0 {
		t.Fatalf("empty area should report no elements")
	}
	want := []page.LegendEntry{{Color: "#2563eb", Label: "A"}}
	if diff := cmp.Diff(want, in.Legend()); diff != "" {
		t.Fatalf("legend (-want +got):\n%s", diff)
	}
}

func TestCostBenefitExplicitRatio(t *testing.T) {
	in := NewLibrary().CostBenefit("v", items(decision.Record{"name": "X", "cost": 10, "total": 2, "ratio": 99}), Options{})
	for _, el := range in.elements {
		if el.Ratio.Or(0) != 99 {
			t.Fatalf("explicit ratio must win, got %v", el.Ratio)
		}
	}
}

func TestRatioBarElements(t *testing.T) {
	in := NewLibrary().RatioBar("ratio", items(
		decision.Record{"name": "A", "cost": 10, "total": 5},
		decision.Record{"name": "B"},
	), Options{Width: 800, Height: 300})
	if els := in.ElementsAt(100, 200); len(els) != 1 || els[0].Name != "A" {
		t.Fatalf("expected bar A, got %+v", els)
	}
	if els := in.ElementsAt(700, 200); len(els) != 1 || els[0].Name != "B" || els[0].Ratio.Valid() {
		t.Fatalf("expected no-data bar B, got %+v", els)
	}
	if els := in.ElementsAt(10, 10); els != nil {
		t.Fatalf("outside the grid should miss, got %+v", els)
	}
	var buf bytes.Buffer
	if err := in.Render(&buf); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"toFixed(6)", "Sin dato", "ratio"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered chart misses %q", want)
		}
	}
}

func TestRatioBarZeroRatioKeepsValue(t *testing.T) {
	in := NewLibrary().RatioBar("ratio", items(
		decision.Record{"name": "Gratis", "cost": 0, "total": 5},
		decision.Record{"name": "Nada"},
	), Options{Width: 800, Height: 300})
	els := in.ElementsAt(100, 200)
	if len(els) != 1 || els[0].Name != "Gratis" || !els[0].Ratio.Valid() || els[0].Ratio.Or(-1) != 0 {
		t.Fatalf("expected bar Gratis with ratio 0, got %+v", els)
	}
	var buf bytes.Buffer
	if err := in.Render(&buf); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, `"name":"Gratis","value":0`) {
		t.Fatalf("a zero ratio must be sent as 0, not as missing:\n%s", html)
	}
	if !strings.Contains(html, `"name":"Nada","value":"-"`) {
		t.Fatalf("a missing ratio must be sent as \"-\":\n%s", html)
	}
	if strings.Count(html, `"opacity":0.25`) != 2 {
		t.Fatalf("both bars should be dimmed")
	}
}

func TestDestroy(t *testing.T) {
	in := NewLibrary().RatioBar("ratio", items(decision.Record{"name": "A", "ratio": 1}), Options{})
	in.Destroy()
	in.Destroy()
	if !in.Destroyed() {
		t.Fatalf("instance should be destroyed")
	}
	if err := in.Render(&bytes.Buffer{}); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
	if in.ElementsAt(100, 100) != nil {
		t.Fatalf("destroyed instance must not report elements")
	}
}

func TestBuildLegendAndPage(t *testing.T) {
	lib := NewLibrary()
	rows := items(
		decision.Record{"name": "A", "cost": 10, "total": 5},
		decision.Record{"name": "C", "cost": 4, "total": 8},
	)
	bar := lib.RatioBar("ratio", rows, Options{})
	vec := lib.CostBenefit("vector", rows, Options{})

	legend := &page.Legend{ID: "legend"}
	legend.Append(page.LegendEntry{Label: "stale"})
	BuildLegend(legend, vec.Legend())
	if got := legend.Entries(); len(got) != 2 || got[0].Label != "A" || got[1].Color != "#16a34a" {
		t.Fatalf("unexpected legend %+v", got)
	}
	BuildLegend(nil, vec.Legend())

	var buf bytes.Buffer
	if err := Page(&buf, "CBA", bar, vec, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "CBA") {
		t.Fatalf("page title missing")
	}
}

func TestNiceCeil(t *testing.T) {
	cases := map[float64]float64{0: 1, 1: 1, 1.1: 2, 5.5: 10, 11: 20, 2200: 2500, 4400: 5000}
	for in, want := range cases {
		if got := niceCeil(in); got != want {
			t.Fatalf("niceCeil(%v) = %v want %v", in, got, want)
		}
	}
}
