package term

import "github.com/woxQAQ/termwire/pkg/wire"

const (
	// DefaultScrollbackLimit is the scrollback line limit applied when no
	// config is given.
	DefaultScrollbackLimit = 10000

	// MaxScrollbackCap is the finite cap substituted for the "unbounded"
	// scrollback sentinel before it reaches the engine.
	MaxScrollbackCap = 1000000
)

// Fallback colors used when neither the cell nor the terminal configuration
// provides one.
var (
	FallbackForeground = RGB{R: 0xEA, G: 0xEA, B: 0xEA}
	FallbackBackground = RGB{R: 0x1D, G: 0x1F, B: 0x21}
)

// Config is the construction-time configuration of a Handle. It is consumed
// once at construction and kept only for record keeping.
//
// ScrollbackLimit is a line count, 0 meaning unbounded (translated to
// MaxScrollbackCap before it reaches the engine). FgColor and BgColor are
// 24-bit RGB values packed into a u32, 0 meaning "use the engine default".
type Config struct {
	ScrollbackLimit uint32
	FgColor         uint32
	BgColor         uint32
}

// DefaultConfig returns the configuration applied when construction receives
// none: default scrollback limit, default colors.
func DefaultConfig() Config {
	return Config{ScrollbackLimit: DefaultScrollbackLimit}
}

// ConfigFromWire converts a decoded wire config record.
func ConfigFromWire(wc wire.Config) Config {
	return Config{
		ScrollbackLimit: wc.ScrollbackLimit,
		FgColor:         wc.FgColor,
		BgColor:         wc.BgColor,
	}
}

// engineConfig translates the boundary configuration into engine
// construction parameters.
func (c Config) engineConfig() EngineConfig {
	ec := EngineConfig{ScrollbackCap: int(c.ScrollbackLimit)}
	if c.ScrollbackLimit == 0 {
		ec.ScrollbackCap = MaxScrollbackCap
	}
	if c.FgColor != 0 {
		r, g, b := wire.UnpackRGB(c.FgColor)
		ec.Foreground = &RGB{R: r, G: g, B: b}
	}
	if c.BgColor != 0 {
		r, g, b := wire.UnpackRGB(c.BgColor)
		ec.Background = &RGB{R: r, G: g, B: b}
	}
	return ec
}
