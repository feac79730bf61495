package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-env", ""})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Assistant.Timeout() != 30*time.Second || cfg.UseECharts() {
		t.Fatalf("unexpected derived values: %s %v", cfg.Assistant.Timeout(), cfg.UseECharts())
	}
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	yml := writeFile(t, dir, "cba.yaml", `
addr: ":7000"
chart_library: echarts
width: 640
debounce: 300ms
assistant:
  model: from-yaml
  timeout_seconds: 5
notebook:
  cba.lastNotebookWinner: A
`)
	dot := writeFile(t, dir, ".env", "OPENROUTER_MODEL=from-dotenv\nCBA_PAYLOAD=data.json\n")
	t.Setenv("CBA_ADDR", ":7100")
	t.Setenv("OPENROUTER_TIMEOUT_SECONDS", "12.5")

	cfg, err := Parse([]string{"-config", yml, "-env", dot, "-addr", ":7200", "-dpr", "2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Addr != ":7200" {
		t.Fatalf("flag should win over env, got %q", cfg.Addr)
	}
	if cfg.ChartLibrary != LibraryECharts || cfg.Width != 640 || cfg.Debounce != 300*time.Millisecond {
		t.Fatalf("yaml values lost: %+v", cfg)
	}
	if cfg.Assistant.Model != "from-dotenv" || cfg.Payload != "data.json" {
		t.Fatalf(".env should override yaml: %+v", cfg)
	}
	if cfg.Assistant.Timeout() != 12500*time.Millisecond {
		t.Fatalf("env timeout not applied: %s", cfg.Assistant.Timeout())
	}
	if cfg.DPR != 2 || cfg.Notebook["cba.lastNotebookWinner"] != "A" {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestRealEnvBeatsDotenv(t *testing.T) {
	dot := writeFile(t, t.TempDir(), ".env", "CBA_LOG_LEVEL=debug\n")
	t.Setenv("CBA_LOG_LEVEL", "warn")
	env, err := ReadEnv(dot)
	if err != nil {
		t.Fatalf("ReadEnv: %v", err)
	}
	cfg := Default()
	if err := env.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("got %q", cfg.LogLevel)
	}
}

func TestMissingDotenvIsFine(t *testing.T) {
	if _, err := ReadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

func TestInvalidInputs(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"bad library", []string{"-env", "", "-library", "svgjs"}, nil, "chart_library"},
		{"bad width", []string{"-env", "", "-width", "-5"}, nil, "width"},
		{"bad yaml", []string{"-env", "", "-config", writeFile(t, dir, "bad.yaml", "width: [")}, nil, "parse config yaml"},
		{"missing yaml", []string{"-env", "", "-config", filepath.Join(dir, "nope.yaml")}, nil, "read config"},
		{"bad log level", []string{"-env", "", "-log-level", "verbose"}, nil, "log_level"},
		{"bad timeout", []string{"-env", ""}, map[string]string{"OPENROUTER_TIMEOUT_SECONDS": "soon"}, "OPENROUTER_TIMEOUT_SECONDS"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			_, err := Parse(c.args)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("expected error containing %q, got %v", c.want, err)
			}
		})
	}
}

func TestLibraryIsNormalized(t *testing.T) {
	cfg, err := Parse([]string{"-env", "", "-library", " ECharts "})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.UseECharts() {
		t.Fatalf("library not normalized: %q", cfg.ChartLibrary)
	}
}
