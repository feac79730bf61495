// Package config assembles runtime settings from defaults, a YAML file, a .env
// file, the environment and command line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iafilius/CBACharts/src/logging"
)

const (
	LibraryCanvas  = "canvas"
	LibraryECharts = "echarts"
)

type Assistant struct {
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Endpoint       string  `yaml:"endpoint"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
}

// Timeout converts TimeoutSeconds; non-positive values mean the 30s default.
func (a Assistant) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds * float64(time.Second))
}

type Config struct {
	Addr         string            `yaml:"addr"`
	Payload      string            `yaml:"payload"`
	ChartLibrary string            `yaml:"chart_library"`
	Width        int               `yaml:"width"`
	DPR          float64           `yaml:"dpr"`
	Debounce     time.Duration     `yaml:"debounce"`
	HitThreshold float64           `yaml:"hit_threshold"`
	LogLevel     string            `yaml:"log_level"`
	Assistant    Assistant         `yaml:"assistant"`
	Notebook     map[string]string `yaml:"notebook"`
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		ChartLibrary: LibraryCanvas,
		Width:        800,
		DPR:          1,
		Debounce:     150 * time.Millisecond,
		HitThreshold: 10,
		LogLevel:     "info",
		Assistant: Assistant{
			Endpoint:       "https://openrouter.ai/api/v1/chat/completions",
			TimeoutSeconds: 30,
		},
	}
}

// UseECharts reports whether the charting library path is selected.
func (c Config) UseECharts() bool { return c.ChartLibrary == LibraryECharts }

func (c Config) Validate() error {
	var errs []error
	if c.ChartLibrary != LibraryCanvas && c.ChartLibrary != LibraryECharts {
		errs = append(errs, fmt.Errorf("chart_library must be %q or %q, got %q", LibraryCanvas, LibraryECharts, c.ChartLibrary))
	}
	if c.Width <= 0 {
		errs = append(errs, fmt.Errorf("width must be positive, got %d", c.Width))
	}
	if c.DPR <= 0 {
		errs = append(errs, fmt.Errorf("dpr must be positive, got %v", c.DPR))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// LoadFile overlays a YAML file on top of base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

// Env looks up variables in the process environment first and then in values read
// from a .env file. The .env file never overrides the real environment.
type Env struct {
	dotenv map[string]string
}

// ReadEnv reads an optional .env file; a missing file is not an error.
func ReadEnv(path string) (Env, error) {
	e := Env{dotenv: map[string]string{}}
	if path == "" {
		return e, nil
	}
	m, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return e, nil
		}
		return e, fmt.Errorf("read env file: %w", err)
	}
	e.dotenv = m
	return e, nil
}

func (e Env) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := e.dotenv[key]
	return v, ok
}

// Apply overrides cfg with every recognised variable that is set and non-empty.
func (e Env) Apply(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := e.Lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("CBA_ADDR", &cfg.Addr)
	str("CBA_PAYLOAD", &cfg.Payload)
	str("CBA_CHART_LIBRARY", &cfg.ChartLibrary)
	str("CBA_LOG_LEVEL", &cfg.LogLevel)
	str("OPENROUTER_API_KEY", &cfg.Assistant.APIKey)
	str("OPENROUTER_MODEL", &cfg.Assistant.Model)
	if v, ok := e.Lookup("OPENROUTER_TIMEOUT_SECONDS"); ok && strings.TrimSpace(v) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid OPENROUTER_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.Assistant.TimeoutSeconds = f
	}
	return nil
}

// Parse builds the server configuration from args (without the program name).
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("cbaserver", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	envPath := fs.String("env", ".env", "dotenv file (optional)")
	addr := fs.String("addr", "", "listen address")
	payload := fs.String("payload", "", "dashboard payload file (.json or .xlsx)")
	library := fs.String("library", "", "chart library: canvas or echarts")
	width := fs.Int("width", 0, "chart CSS width")
	dpr := fs.Float64("dpr", 0, "device pixel ratio")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		var err error
		if cfg, err = LoadFile(*configPath, cfg); err != nil {
			return Config{}, err
		}
	}
	env, err := ReadEnv(*envPath)
	if err != nil {
		return Config{}, err
	}
	if err := env.Apply(&cfg); err != nil {
		return Config{}, err
	}

	// explicit flags win
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "payload":
			cfg.Payload = *payload
		case "library":
			cfg.ChartLibrary = *library
		case "width":
			cfg.Width = *width
		case "dpr":
			cfg.DPR = *dpr
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	cfg.ChartLibrary = strings.ToLower(strings.TrimSpace(cfg.ChartLibrary))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
