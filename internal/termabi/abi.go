// Package termabi flattens the terminal handle into the C-compatible
// boundary surface: integer handles, scalar arguments, raw byte buffers,
// and sentinel-based errors. Nothing here panics or unwinds across the
// boundary; failed constructions report handle 0, failed reads report -1,
// and queries against an unknown handle report zero values.
package termabi

import (
	"go.uber.org/zap"

	"github.com/woxQAQ/termwire/internal/engine"
	"github.com/woxQAQ/termwire/internal/term"
	"github.com/woxQAQ/termwire/pkg/wire"
)

var logger = zap.NewNop()

// SetLogger routes boundary diagnostics to l. The boundary itself never
// writes to stdio.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l.With(zap.String("component", "boundary"))
}

// New constructs a terminal and returns its handle, 0 on failure. cols and
// rows must be positive. A nil cfg applies the defaults.
func New(cols, rows int32, cfg *wire.Config) uint32 {
	var tc *term.Config
	if cfg != nil {
		c := term.ConfigFromWire(*cfg)
		tc = &c
	}

	h, err := term.New(int(cols), int(rows), tc, engine.New, logger)
	if err != nil {
		logger.Warn("terminal construction failed",
			zap.Int32("cols", cols),
			zap.Int32("rows", rows),
			zap.Error(err),
		)
		return 0
	}

	return registerHandle(h)
}

// Free destroys the terminal behind id. A zero or unknown id is a no-op.
func Free(id uint32) {
	if id == 0 {
		return
	}
	if h := unregisterHandle(id); h != nil {
		h.Close()
	}
}

// Write feeds p to the terminal's stream processor. Engine failures are
// logged and absorbed; prior screen state stays valid and readable.
func Write(id uint32, p []byte) {
	h := lookupHandle(id)
	if h == nil {
		return
	}
	if err := h.Write(p); err != nil {
		logger.Warn("write failed", zap.Uint32("handle", id), zap.Error(err))
	}
}

// Resize changes the terminal's grid dimensions. Engine failures are
// logged and absorbed, leaving the prior state untouched.
func Resize(id uint32, cols, rows int32) {
	h := lookupHandle(id)
	if h == nil {
		return
	}
	if err := h.Resize(int(cols), int(rows)); err != nil {
		logger.Warn("resize failed",
			zap.Uint32("handle", id),
			zap.Int32("cols", cols),
			zap.Int32("rows", rows),
			zap.Error(err),
		)
	}
}

// Cols reports the column count, 0 for an unknown handle.
func Cols(id uint32) int32 {
	return int32(lookupHandle(id).Cols())
}

// Rows reports the row count, 0 for an unknown handle.
func Rows(id uint32) int32 {
	return int32(lookupHandle(id).Rows())
}

// CursorX reports the cursor column, 0 for an unknown handle.
func CursorX(id uint32) int32 {
	return int32(lookupHandle(id).CursorX())
}

// CursorY reports the cursor row, 0 for an unknown handle.
func CursorY(id uint32) int32 {
	return int32(lookupHandle(id).CursorY())
}

// CursorVisible reports cursor visibility as 0 or 1.
func CursorVisible(id uint32) int32 {
	if lookupHandle(id).CursorVisible() {
		return 1
	}
	return 0
}

// ScrollbackLen reports the scrollback line count, capped by the handle's
// traversal bound.
func ScrollbackLen(id uint32) int32 {
	return int32(lookupHandle(id).ScrollbackLen())
}

// Line resolves one viewport row into dst as consecutive wire cells and
// returns the cell count, -1 on error. dst capacity is len(dst) divided by
// the wire cell size; it must cover the current column count. On failure
// nothing is written.
func Line(id uint32, row int32, dst []byte) int32 {
	h := lookupHandle(id)
	if h == nil {
		return -1
	}

	cells := make([]wire.Cell, len(dst)/wire.CellSize)
	n, err := h.Line(int(row), cells)
	if err != nil {
		logger.Debug("line read failed",
			zap.Uint32("handle", id),
			zap.Int32("row", row),
			zap.Error(err),
		)
		return -1
	}

	for i := 0; i < n; i++ {
		cells[i].Encode(dst[i*wire.CellSize:])
	}
	return int32(n)
}

// ScrollbackLine always reports -1. Scrollback-relative reads are a
// declared part of the boundary contract that is not implemented yet.
func ScrollbackLine(id uint32, row int32, dst []byte) int32 {
	return -1
}

// IsDirty reports as 0 or 1 whether any row changed since the last
// ClearDirty.
func IsDirty(id uint32) int32 {
	if lookupHandle(id).IsDirty() {
		return 1
	}
	return 0
}

// IsRowDirty reports as 0 or 1 whether one row changed since the last
// ClearDirty. Out of range rows report 0.
func IsRowDirty(id uint32, row int32) int32 {
	if lookupHandle(id).IsRowDirty(int(row)) {
		return 1
	}
	return 0
}

// ClearDirty marks every row clean.
func ClearDirty(id uint32) {
	lookupHandle(id).ClearDirty()
}
