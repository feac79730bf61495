package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/surface"
)

func abItems() []decision.Item {
	return decision.Normalize([]decision.Record{
		{"name": "A", "cost": 10, "total": 5},
		{"name": "B", "cost": 0, "total": 0},
	})
}

func TestBarsEndToEnd(t *testing.T) {
	l := LayoutBars(abItems(), 800, 300, BarOptions{})
	if len(l.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(l.Bars))
	}
	a, b := l.Bars[0], l.Bars[1]
	if l.Max != 2 {
		t.Fatalf("scale max: got %v want 2", l.Max)
	}
	if a.Dimmed || a.Alpha != FullAlpha || a.H != l.PlotH {
		t.Fatalf("bar A should be full height and opaque: %+v (plotH %v)", a, l.PlotH)
	}
	if !b.Dimmed || b.Alpha != DimAlpha || b.H != 0 {
		t.Fatalf("bar B should be dimmed with zero height: %+v", b)
	}
	if a.W != (l.PlotW-barGap)/2 || b.X != a.X+a.W+barGap {
		t.Fatalf("unexpected horizontal layout: %+v %+v", a, b)
	}
	if a.Color != Palette[0] || b.Color != Palette[1] {
		t.Fatalf("palette not applied by index")
	}
}

func TestBarsScaleFloorAndMinWidth(t *testing.T) {
	items := make([]decision.Item, 40)
	for i := range items {
		items[i] = decision.Item{Name: "x", Ratio: decision.Some(0.5)}
	}
	l := LayoutBars(items, 400, 150, BarOptions{})
	if l.Max != 1 {
		t.Fatalf("max must never drop below 1, got %v", l.Max)
	}
	if l.Bars[0].W != minBarWidth {
		t.Fatalf("expected min bar width, got %v", l.Bars[0].W)
	}
	if math.Abs(l.Bars[0].H-l.PlotH/2) > 1e-9 {
		t.Fatalf("ratio 0.5 should fill half the plot: %v vs %v", l.Bars[0].H, l.PlotH)
	}
	if l.Bars[7].Color != Palette[0] {
		t.Fatalf("palette should cycle after 7 colors")
	}
}

func TestScatterExcludesZeroRows(t *testing.T) {
	g := LayoutScatter(abItems(), 800, 300, ScatterOptions{})
	if len(g.Points) != 1 || g.Points[0].Name != "A" {
		t.Fatalf("expected only A in the scatter, got %+v", g.Points)
	}
	p := g.Points[0]
	// A is the max on both axes, so it sits at the top-right plot corner
	if p.X != 800-scatterPad || p.Y != scatterPad {
		t.Fatalf("unexpected position (%v,%v)", p.X, p.Y)
	}
	if g.OriginX != scatterPad || g.OriginY != 300-scatterPad {
		t.Fatalf("unexpected origin (%v,%v)", g.OriginX, g.OriginY)
	}
	if p.Ratio.Or(0) != 2 {
		t.Fatalf("ratio not carried into geometry: %v", p.Ratio)
	}
}

func TestScatterSkipsMissingValuesAndKeepsItemColors(t *testing.T) {
	items := decision.Normalize([]decision.Record{
		{"name": "sin costo", "total": 4},
		{"name": "cero", "cost": 0, "total": 0},
		{"name": "C", "cost": "0", "total": "3"},
	})
	g := LayoutScatter(items, 600, 300, ScatterOptions{})
	if len(g.Points) != 1 {
		t.Fatalf("expected one plotted point, got %+v", g.Points)
	}
	if g.Points[0].Color != Palette[2] {
		t.Fatalf("color should follow the item index, got %s", g.Points[0].Color)
	}
	// zero cost is a valid value and sits on the Y axis
	if g.Points[0].X != g.OriginX {
		t.Fatalf("zero cost should map to the origin column")
	}
}

func TestScatterLabelFlip(t *testing.T) {
	items := decision.Normalize([]decision.Record{
		{"name": "cerca del borde", "cost": 100, "total": 10},
		{"name": "lejos", "cost": 10, "total": 5},
	})
	g := LayoutScatter(items, 400, 300, ScatterOptions{})
	got := []surface.Align{g.Points[0].LabelAlign, g.Points[1].LabelAlign}
	if diff := cmp.Diff([]surface.Align{surface.AlignRight, surface.AlignLeft}, got); diff != "" {
		t.Fatalf("label alignment (-want +got):\n%s", diff)
	}
	if g.Points[0].X <= 400-LabelFlipMargin || g.Points[1].X > 400-LabelFlipMargin {
		t.Fatalf("fixture points are on the wrong side of the flip line: %v %v", g.Points[0].X, g.Points[1].X)
	}
	if g.Points[0].LabelX != g.Points[0].X-labelOffset || g.Points[1].LabelX != g.Points[1].X+labelOffset {
		t.Fatalf("label offsets wrong: %+v", g.Points)
	}
}

func TestRenderProducesImages(t *testing.T) {
	s := surface.New("ratio", 800, 300)
	s.CSSWidth = 400
	l, err := RenderBars(s, 2, abItems(), BarOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 400 || l.Height != 150 {
		t.Fatalf("layout should use css size, got %vx%v", l.Width, l.Height)
	}
	img, err := s.Image()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 300 {
		t.Fatalf("unexpected bitmap size %v", img.Bounds())
	}

	sc := surface.New("vector", 0, 0)
	sc.CSSWidth = 640
	g, err := RenderScatter(sc, 1, abItems(), ScatterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Height != 240 || sc.Height != 240 {
		t.Fatalf("missing attributes should default to 3:8, got %v / %d", g.Height, sc.Height)
	}
}

func TestRenderEmptyState(t *testing.T) {
	s := surface.New("ratio", 400, 150)
	l, err := RenderBars(s, 1, nil, BarOptions{})
	if err != nil || len(l.Bars) != 0 {
		t.Fatalf("empty render: %v %+v", err, l)
	}
	g, err := RenderScatter(surface.New("v", 400, 150), 1, []decision.Item{{Name: "x"}}, ScatterOptions{})
	if err != nil || len(g.Points) != 0 {
		t.Fatalf("empty scatter: %v %+v", err, g)
	}
	if len(s.Bytes()) == 0 {
		t.Fatalf("empty state should still encode a frame")
	}
}

func TestTickLabel(t *testing.T) {
	cases := map[float64]string{0: "0", 0.5: "0.500", 2: "2.00", 12.5: "12.5", 250: "250", 12000: "12,000"}
	for in, want := range cases {
		if got := TickLabel(in); got != want {
			t.Fatalf("TickLabel(%v) = %q want %q", in, got, want)
		}
	}
}

func TestCaption(t *testing.T) {
	base := Blank(200, 60)
	out := Caption(base, "Clic en un punto")
	if out == base {
		t.Fatalf("caption should return a copy")
	}
	if c := color.RGBAModel.Convert(out.At(4, 50)).(color.RGBA); c.R > 100 {
		t.Fatalf("expected dark caption strip at the bottom-left, got %+v", c)
	}
	if Caption(base, "  ") != base {
		t.Fatalf("blank caption should be a no-op")
	}
}
