// Package config loads host configuration from termwire.yaml, environment
// variables, and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/woxQAQ/termwire/pkg/wire"
)

// Config is the full host configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Wasm     WasmConfig     `mapstructure:"wasm"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Bundles  BundleConfig   `mapstructure:"bundles"`
}

// LogConfig controls host logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is json or console.
	Format string `mapstructure:"format"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Retain debug info in compiled guests.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory. Empty keeps the cache in memory.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent instances. 0 means unlimited.
	MaxInstances int `mapstructure:"max_instances"`
}

// TerminalConfig holds the initial terminal geometry and appearance.
type TerminalConfig struct {
	Cols int `mapstructure:"cols"`
	Rows int `mapstructure:"rows"`
	// Scrollback line limit. 0 means unbounded.
	ScrollbackLimit uint32 `mapstructure:"scrollback_limit"`
	// Default colors as #RRGGBB. Empty uses the built-in defaults.
	FgColor string `mapstructure:"fg_color"`
	BgColor string `mapstructure:"bg_color"`
}

// BundleConfig locates guest bundles on disk.
type BundleConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration. With an explicit path the file must exist;
// otherwise termwire.yaml is looked up in the working directory and in
// $HOME/.termwire, and its absence is fine. TERMWIRE_* environment
// variables override file values, with dots replaced by underscores
// (TERMWIRE_TERMINAL_COLS).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("wasm.memory_pages", 256) // 16MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")
	v.SetDefault("wasm.max_instances", 100)

	v.SetDefault("terminal.cols", 80)
	v.SetDefault("terminal.rows", 24)
	v.SetDefault("terminal.scrollback_limit", 10000)
	v.SetDefault("terminal.fg_color", "")
	v.SetDefault("terminal.bg_color", "")

	v.SetDefault("bundles.dir", "./bundles")

	v.SetEnvPrefix("TERMWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("termwire")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.termwire")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn, or error)", c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log.format %q (must be json or console)", c.Log.Format)
	}

	if c.Terminal.Cols <= 0 || c.Terminal.Rows <= 0 {
		return fmt.Errorf("invalid terminal size %dx%d (both dimensions must be positive)", c.Terminal.Cols, c.Terminal.Rows)
	}

	if c.Wasm.MaxInstances < 0 {
		return fmt.Errorf("invalid wasm.max_instances %d (must be non-negative)", c.Wasm.MaxInstances)
	}

	if _, err := ParseColor(c.Terminal.FgColor); err != nil {
		return fmt.Errorf("invalid terminal.fg_color: %w", err)
	}
	if _, err := ParseColor(c.Terminal.BgColor); err != nil {
		return fmt.Errorf("invalid terminal.bg_color: %w", err)
	}

	return nil
}

// WireConfig converts the terminal section into the boundary record the
// guest is constructed with.
func (c *TerminalConfig) WireConfig() wire.Config {
	fg, _ := ParseColor(c.FgColor)
	bg, _ := ParseColor(c.BgColor)
	return wire.Config{
		ScrollbackLimit: c.ScrollbackLimit,
		FgColor:         fg,
		BgColor:         bg,
	}
}

// ParseColor parses a #RRGGBB string into a packed 24-bit RGB value.
// The empty string parses to 0, which the boundary reads as "use the
// built-in default".
func ParseColor(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}

	if !strings.HasPrefix(s, "#") || len(s) != 7 {
		return 0, fmt.Errorf("color %q is not of the form #RRGGBB", s)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, fmt.Errorf("color %q is not of the form #RRGGBB", s)
	}

	return wire.PackRGB(r, g, b), nil
}
