// Package engine adapts the go-headless-term emulator to the term.Engine
// surface the boundary layer consumes.
package engine

import (
	"image/color"

	"github.com/danielgatis/go-ansicode"
	headlessterm "github.com/danielgatis/go-headless-term"
	"github.com/mattn/go-runewidth"

	"github.com/woxQAQ/termwire/internal/term"
)

// Headless wraps a headless VT220 emulator. Apart from the emulator state it
// keeps a style table: distinct (colors, attributes) combinations observed
// while reading rows are interned and addressed by id, with id 0 reserved
// for the default style.
type Headless struct {
	t *headlessterm.Terminal

	fg *term.RGB
	bg *term.RGB

	styles  []term.Style
	styleID map[term.Style]uint32
}

var _ term.Engine = (*Headless)(nil)

// New constructs an engine instance. It satisfies term.EngineFactory.
func New(cols, rows int, cfg term.EngineConfig) (term.Engine, error) {
	t := headlessterm.New(
		headlessterm.WithSize(rows, cols),
		headlessterm.WithScrollback(headlessterm.NewMemoryScrollback(cfg.ScrollbackCap)),
	)

	// A bare line feed also returns the cursor to column 0. The boundary
	// cursor contract expects newline semantics for "\n" input.
	t.SetMode(ansicode.TerminalModeLineFeedNewLine)

	return &Headless{
		t:       t,
		fg:      cfg.Foreground,
		bg:      cfg.Background,
		styles:  []term.Style{{}},
		styleID: map[term.Style]uint32{{}: 0},
	}, nil
}

// Release drops the emulator state. The engine must not be used afterwards.
func (e *Headless) Release() {
	e.t = nil
	e.styles = nil
	e.styleID = nil
}

// Resize changes the grid dimensions. The emulator preserves content and
// moves overflow lines to scrollback.
func (e *Headless) Resize(cols, rows int) error {
	e.t.Resize(rows, cols)
	return nil
}

// Feed runs bytes through the emulator's escape sequence decoder.
func (e *Headless) Feed(p []byte) error {
	_, err := e.t.Write(p)
	return err
}

// Size reports the current grid dimensions.
func (e *Headless) Size() (cols, rows int) {
	return e.t.Cols(), e.t.Rows()
}

// Cursor reports the cursor position and visibility.
func (e *Headless) Cursor() (x, y int, visible bool) {
	row, col := e.t.CursorPos()
	return col, row, e.t.CursorVisible()
}

// ScrollbackLen reports the number of lines held in scrollback.
func (e *Headless) ScrollbackLen() int {
	return e.t.ScrollbackLen()
}

// ReadRow walks one viewport row in column order.
func (e *Headless) ReadRow(row int, fn func(col int, cell term.Cell)) {
	cols := e.t.Cols()
	for col := 0; col < cols; col++ {
		fn(col, e.convert(e.t.Cell(row, col)))
	}
}

// LookupStyle resolves an interned style id.
func (e *Headless) LookupStyle(id uint32) (term.Style, bool) {
	if int(id) >= len(e.styles) {
		return term.Style{}, false
	}
	return e.styles[id], true
}

// PaletteColor resolves an index in the 256-entry palette.
func (e *Headless) PaletteColor(index uint8) term.RGB {
	return paletteRGB(index)
}

// DefaultForeground reports the configured dynamic foreground color.
func (e *Headless) DefaultForeground() (term.RGB, bool) {
	if e.fg == nil {
		return term.RGB{}, false
	}
	return *e.fg, true
}

// DefaultBackground reports the configured dynamic background color.
func (e *Headless) DefaultBackground() (term.RGB, bool) {
	if e.bg == nil {
		return term.RGB{}, false
	}
	return *e.bg, true
}

// convert maps one emulator cell to the logical cell model.
func (e *Headless) convert(c *headlessterm.Cell) term.Cell {
	if c == nil || isDefaultCell(c) {
		return term.Cell{Width: term.WidthNormal}
	}

	out := term.Cell{StyleID: e.intern(cellStyle(c))}

	switch {
	case c.IsWideSpacer():
		// The placeholder behind a wide character carries the style
		// but no content.
		out.Width = term.WidthZero
	case c.Char == 0:
		out.Width = term.WidthNormal
	case c.IsWide():
		out.Codepoint = uint32(c.Char)
		out.Width = term.WidthWide
	case runewidth.RuneWidth(c.Char) == 0:
		out.Codepoint = uint32(c.Char)
		out.Width = term.WidthZero
	default:
		out.Codepoint = uint32(c.Char)
		out.Width = term.WidthNormal
	}

	return out
}

// intern returns the id for a style, assigning the next dense id to styles
// seen for the first time. The default style is always id 0.
func (e *Headless) intern(st term.Style) uint32 {
	if id, ok := e.styleID[st]; ok {
		return id
	}
	id := uint32(len(e.styles))
	e.styles = append(e.styles, st)
	e.styleID[st] = id
	return id
}

// isDefaultCell reports whether a cell is indistinguishable from a freshly
// reset one: blank content, no attributes, default colors. Such cells cross
// the boundary as empty.
func isDefaultCell(c *headlessterm.Cell) bool {
	if c.Char != ' ' {
		return false
	}
	if c.Flags&^headlessterm.CellFlagDirty != 0 {
		return false
	}
	return isDefaultColor(c.Fg, headlessterm.NamedColorForeground) &&
		isDefaultColor(c.Bg, headlessterm.NamedColorBackground)
}

func isDefaultColor(c color.Color, name int) bool {
	if c == nil {
		return true
	}
	named, ok := c.(*headlessterm.NamedColor)
	return ok && named.Name == name
}

// cellStyle lifts an emulator cell's colors and attributes into the closed
// style model the resolution cascade understands.
func cellStyle(c *headlessterm.Cell) term.Style {
	const anyUnderline = headlessterm.CellFlagUnderline |
		headlessterm.CellFlagDoubleUnderline |
		headlessterm.CellFlagCurlyUnderline |
		headlessterm.CellFlagDottedUnderline |
		headlessterm.CellFlagDashedUnderline

	return term.Style{
		Fg:            convertColor(c.Fg),
		Bg:            convertColor(c.Bg),
		Bold:          c.HasFlag(headlessterm.CellFlagBold),
		Italic:        c.HasFlag(headlessterm.CellFlagItalic),
		Underline:     c.Flags&anyUnderline != 0,
		Strikethrough: c.HasFlag(headlessterm.CellFlagStrike),
		Inverse:       c.HasFlag(headlessterm.CellFlagReverse),
		Invisible:     c.HasFlag(headlessterm.CellFlagHidden),
		Blink:         c.Flags&(headlessterm.CellFlagBlinkSlow|headlessterm.CellFlagBlinkFast) != 0,
		Faint:         c.HasFlag(headlessterm.CellFlagDim),
	}
}

// convertColor maps an emulator color to the closed Color set. Indexed and
// low named colors become palette references, concrete colors become
// explicit RGB, and the semantic default names become "none" so that
// resolution falls through to the terminal defaults.
func convertColor(c color.Color) term.Color {
	switch v := c.(type) {
	case nil:
		return term.Color{}
	case *headlessterm.IndexedColor:
		if v.Index >= 0 && v.Index <= 255 {
			return term.PaletteColor(uint8(v.Index))
		}
		return term.Color{}
	case *headlessterm.NamedColor:
		// SGR 30-37/90-97 arrive as named colors with palette-range
		// values. Semantic names (foreground, background, cursor)
		// sit above the palette range.
		if v.Name >= 0 && v.Name <= 255 {
			return term.PaletteColor(uint8(v.Name))
		}
		return term.Color{}
	case color.RGBA:
		return term.RGBColor(v.R, v.G, v.B)
	default:
		r, g, b, _ := v.RGBA()
		return term.RGBColor(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
}
