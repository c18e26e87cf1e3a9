package term

// Engine is the terminal-state engine a Handle wraps. The engine owns escape
// sequence parsing, the screen and scrollback buffers, and the style table;
// the boundary layer never reaches into any of that, it only consumes this
// surface.
//
// Engines are not safe for concurrent use. The Handle serializes access.
type Engine interface {
	// Release frees the engine's internal memory. The engine must not be
	// used afterwards.
	Release()

	// Resize changes the grid dimensions. Content preservation and reflow
	// are the engine's contract. cols and rows are always positive.
	Resize(cols, rows int) error

	// Feed runs the byte stream through the escape sequence processor and
	// mutates internal state. The bytes are UTF-8 text interleaved with
	// escape sequences.
	Feed(p []byte) error

	// Size reports the current grid dimensions.
	Size() (cols, rows int)

	// Cursor reports the cursor position in viewport coordinates and
	// whether the cursor is visible.
	Cursor() (x, y int, visible bool)

	// ScrollbackLen reports the number of lines held in scrollback.
	ScrollbackLen() int

	// ReadRow calls fn once per column of the given viewport row, in
	// column order. row is always within [0, rows).
	ReadRow(row int, fn func(col int, cell Cell))

	// LookupStyle resolves a style id from ReadRow cells. Id 0 is always
	// the default style. Unknown ids report false and callers fall back
	// to the default style.
	LookupStyle(id uint32) (Style, bool)

	// PaletteColor resolves an index in the 256-entry palette.
	PaletteColor(index uint8) RGB

	// DefaultForeground reports the configured dynamic foreground color,
	// false when none is configured.
	DefaultForeground() (RGB, bool)

	// DefaultBackground reports the configured dynamic background color,
	// false when none is configured.
	DefaultBackground() (RGB, bool)
}

// EngineFactory constructs an Engine. cols and rows are validated by the
// caller before the factory runs.
type EngineFactory func(cols, rows int, cfg EngineConfig) (Engine, error)

// EngineConfig carries the construction parameters a Handle derives from its
// Config for the engine.
type EngineConfig struct {
	// ScrollbackCap is the maximum number of scrollback lines to retain.
	// Always positive; the "unbounded" config value arrives here already
	// translated to a finite cap.
	ScrollbackCap int

	// Foreground and Background override the engine's dynamic default
	// colors when non-nil.
	Foreground *RGB
	Background *RGB
}

// RGB is a fully resolved 24-bit color.
type RGB struct {
	R, G, B uint8
}

// ColorKind discriminates the engine color representations the resolution
// cascade understands.
type ColorKind uint8

const (
	// ColorNone means no color is set; resolution falls through to the
	// terminal defaults.
	ColorNone ColorKind = iota
	// ColorPalette references an entry in the 256-entry palette.
	ColorPalette
	// ColorRGB is an explicit 24-bit color.
	ColorRGB
)

// Color is one engine-side color slot: nothing, a palette index, or an
// explicit RGB value.
type Color struct {
	Kind  ColorKind
	Index uint8 // valid when Kind is ColorPalette
	RGB   RGB   // valid when Kind is ColorRGB
}

// PaletteColor returns a Color referencing a palette entry.
func PaletteColor(index uint8) Color {
	return Color{Kind: ColorPalette, Index: index}
}

// RGBColor returns a Color holding an explicit RGB value.
func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, RGB: RGB{R: r, G: g, B: b}}
}

// Style is one resolved entry of the engine's style table. The zero value is
// the default style: no colors, no attributes.
type Style struct {
	Fg Color
	Bg Color

	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Inverse       bool
	Invisible     bool
	Blink         bool
	Faint         bool
}

// Width classes for a logical cell.
const (
	WidthZero   uint8 = 0 // combining or zero-width
	WidthNormal uint8 = 1
	WidthWide   uint8 = 2
)

// Cell is one logical screen cell as reported by the engine: content plus a
// style handle. The wire representation is derived from it on every read.
type Cell struct {
	// Codepoint is the cell content, 0 when empty.
	Codepoint uint32

	// StyleID references the engine's style table, 0 for the default style.
	StyleID uint32

	// Width is the cell's width class.
	Width uint8

	// Background is a cell-level background override. It takes precedence
	// over the style's background when set.
	Background Color
}
