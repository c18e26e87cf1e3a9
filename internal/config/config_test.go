package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woxQAQ/termwire/pkg/wire"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want console", cfg.Log.Format)
	}
	if cfg.Wasm.MemoryPages != 256 {
		t.Errorf("Wasm.MemoryPages = %d, want 256", cfg.Wasm.MemoryPages)
	}
	if cfg.Wasm.MaxInstances != 100 {
		t.Errorf("Wasm.MaxInstances = %d, want 100", cfg.Wasm.MaxInstances)
	}
	if cfg.Terminal.Cols != 80 || cfg.Terminal.Rows != 24 {
		t.Errorf("Terminal size = %dx%d, want 80x24", cfg.Terminal.Cols, cfg.Terminal.Rows)
	}
	if cfg.Terminal.ScrollbackLimit != 10000 {
		t.Errorf("Terminal.ScrollbackLimit = %d, want 10000", cfg.Terminal.ScrollbackLimit)
	}
	if cfg.Bundles.Dir != "./bundles" {
		t.Errorf("Bundles.Dir = %q, want ./bundles", cfg.Bundles.Dir)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termwire.yaml")
	content := `log:
  level: debug
  format: json
wasm:
  memory_pages: 128
  max_instances: 10
terminal:
  cols: 132
  rows: 43
  scrollback_limit: 500
  fg_color: "#eaeaea"
  bg_color: "#1d1f21"
bundles:
  dir: /opt/termwire/bundles
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Wasm.MemoryPages != 128 {
		t.Errorf("Wasm.MemoryPages = %d, want 128", cfg.Wasm.MemoryPages)
	}
	if cfg.Terminal.Cols != 132 || cfg.Terminal.Rows != 43 {
		t.Errorf("Terminal size = %dx%d, want 132x43", cfg.Terminal.Cols, cfg.Terminal.Rows)
	}
	if cfg.Bundles.Dir != "/opt/termwire/bundles" {
		t.Errorf("Bundles.Dir = %q", cfg.Bundles.Dir)
	}

	wc := cfg.Terminal.WireConfig()
	want := wire.Config{
		ScrollbackLimit: 500,
		FgColor:         wire.PackRGB(0xEA, 0xEA, 0xEA),
		BgColor:         wire.PackRGB(0x1D, 0x1F, 0x21),
	}
	if wc != want {
		t.Errorf("WireConfig = %+v, want %+v", wc, want)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load of missing explicit file succeeded")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TERMWIRE_TERMINAL_COLS", "120")
	t.Setenv("TERMWIRE_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Terminal.Cols != 120 {
		t.Errorf("Terminal.Cols = %d, want 120 from environment", cfg.Terminal.Cols)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn from environment", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Log:      LogConfig{Level: "info", Format: "console"},
			Terminal: TerminalConfig{Cols: 80, Rows: 24},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero cols", func(c *Config) { c.Terminal.Cols = 0 }},
		{"negative rows", func(c *Config) { c.Terminal.Rows = -1 }},
		{"negative max instances", func(c *Config) { c.Wasm.MaxInstances = -1 }},
		{"bad fg color", func(c *Config) { c.Terminal.FgColor = "red" }},
		{"bad bg color", func(c *Config) { c.Terminal.BgColor = "#12345" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate rejected a valid config: %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"", 0, false},
		{"#000001", wire.PackRGB(0, 0, 1), false},
		{"#ffffff", wire.PackRGB(255, 255, 255), false},
		{"#EAEAEA", wire.PackRGB(0xEA, 0xEA, 0xEA), false},
		{"eaeaea", 0, true},
		{"#eaea", 0, true},
		{"#gggggg", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %#06x, want %#06x", tt.in, got, tt.want)
		}
	}
}
