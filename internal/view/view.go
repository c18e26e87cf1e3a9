// Package view renders boundary terminal state onto a tcell screen.
package view

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/woxQAQ/termwire/pkg/wire"
)

// Source is the read surface the renderer draws from. Local handles and
// remote guest terminals both expose this shape.
type Source interface {
	Cols() int
	Rows() int
	CursorX() int
	CursorY() int
	CursorVisible() bool
	IsRowDirty(row int) bool
	ClearDirty()
	Line(row int, dst []wire.Cell) (int, error)
}

// View owns a tcell screen and redraws dirty rows of a Source onto it.
type View struct {
	screen tcell.Screen
	logger *zap.Logger

	// Row staging buffer, grown to the widest source seen.
	rowBuf []wire.Cell
}

// New creates a view on the process's real terminal.
func New(logger *zap.Logger) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	return NewWithScreen(screen, logger), nil
}

// NewWithScreen creates a view over an already initialized screen.
func NewWithScreen(screen tcell.Screen, logger *zap.Logger) *View {
	return &View{
		screen: screen,
		logger: logger.With(zap.String("component", "view")),
	}
}

// Close releases the screen and restores the calling terminal.
func (v *View) Close() {
	v.screen.Fini()
}

// Screen exposes the underlying screen for event polling.
func (v *View) Screen() tcell.Screen {
	return v.screen
}

// Render redraws every dirty row of src, updates the cursor, and clears the
// source's dirty state. Rows that fail to read are logged and left as they
// were; the next render retries them because the dirty bit stays set on
// rewrite.
func (v *View) Render(src Source) {
	cols, rows := src.Cols(), src.Rows()
	if cols <= 0 || rows <= 0 {
		return
	}

	if cap(v.rowBuf) < cols {
		v.rowBuf = make([]wire.Cell, cols)
	}
	buf := v.rowBuf[:cols]

	for row := 0; row < rows; row++ {
		if !src.IsRowDirty(row) {
			continue
		}

		n, err := src.Line(row, buf)
		if err != nil {
			v.logger.Warn("Row read failed during render",
				zap.Int("row", row),
				zap.Error(err))
			continue
		}

		for col, cell := range buf[:n] {
			// Zero-width cells are either wide-character spacers or
			// combining marks; tcell manages both through the base cell.
			if cell.Width == wire.WidthZero {
				continue
			}
			v.screen.SetContent(col, row, cellRune(cell), nil, cellStyle(cell))
		}
	}

	if src.CursorVisible() {
		v.screen.ShowCursor(src.CursorX(), src.CursorY())
	} else {
		v.screen.HideCursor()
	}

	v.screen.Show()
	src.ClearDirty()
}

// cellRune picks the rune to draw for a cell. Empty and invisible cells draw
// as a blank so their background still shows.
func cellRune(c wire.Cell) rune {
	if c.Codepoint == 0 || c.Flags&wire.FlagInvisible != 0 {
		return ' '
	}
	return rune(c.Codepoint)
}

// cellStyle maps a wire cell's resolved colors and flag bits onto a tcell
// style.
func cellStyle(c wire.Cell) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(c.FgR), int32(c.FgG), int32(c.FgB))).
		Background(tcell.NewRGBColor(int32(c.BgR), int32(c.BgG), int32(c.BgB)))

	if c.Flags&wire.FlagBold != 0 {
		st = st.Bold(true)
	}
	if c.Flags&wire.FlagItalic != 0 {
		st = st.Italic(true)
	}
	if c.Flags&wire.FlagUnderline != 0 {
		st = st.Underline(true)
	}
	if c.Flags&wire.FlagStrikethrough != 0 {
		st = st.StrikeThrough(true)
	}
	if c.Flags&wire.FlagInverse != 0 {
		st = st.Reverse(true)
	}
	if c.Flags&wire.FlagBlink != 0 {
		st = st.Blink(true)
	}
	if c.Flags&wire.FlagFaint != 0 {
		st = st.Dim(true)
	}

	return st
}
