// Package term implements the terminal boundary core: an opaque handle
// wrapping a terminal-state engine, per-row dirty tracking, and the cell
// resolution codec that flattens engine state into wire records.
package term

import (
	"go.uber.org/zap"

	"github.com/woxQAQ/termwire/pkg/wire"
)

// MaxScrollbackReport caps the scrollback length reported across the
// boundary, bounding traversal work for callers that page through history.
const MaxScrollbackReport = 100000

// Handle is the opaque unit of lifecycle management handed to foreign
// callers. It owns one engine instance, the dirty tracker sized to the
// engine's current row count, and the configuration that created it.
//
// A Handle is single threaded: callers must serialize access. No operation
// blocks or suspends.
type Handle struct {
	eng    Engine
	dirty  *dirtyTracker
	cfg    Config
	logger *zap.Logger
	closed bool
}

// New constructs a Handle with its own engine instance. cols and rows must
// be positive. A nil cfg applies the defaults (scrollback limit 10000,
// engine default colors). On any failure nothing is retained.
func New(cols, rows int, cfg *Config, factory EngineFactory, logger *zap.Logger) (*Handle, error) {
	if cols <= 0 || rows <= 0 {
		return nil, &InvalidSizeError{Cols: cols, Rows: rows}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}

	eng, err := factory(cols, rows, c.engineConfig())
	if err != nil {
		return nil, &EngineError{Op: "construct", Err: err}
	}

	return &Handle{
		eng:    eng,
		dirty:  newDirtyTracker(rows),
		cfg:    c,
		logger: logger.With(zap.String("component", "terminal")),
	}, nil
}

// Close releases the dirty tracker, then the engine, then the handle state,
// in that order. Safe on a nil or already closed Handle.
func (h *Handle) Close() {
	if h == nil || h.closed {
		return
	}
	h.dirty = nil
	h.eng.Release()
	h.eng = nil
	h.closed = true
}

// Resize changes the grid dimensions. Content preservation is delegated to
// the engine. On success the dirty tracker is reallocated to the new row
// count with every row dirty; on failure the prior state is untouched.
func (h *Handle) Resize(cols, rows int) error {
	if h == nil || h.closed {
		return ErrClosed
	}
	if cols <= 0 || rows <= 0 {
		return &InvalidSizeError{Cols: cols, Rows: rows}
	}

	if err := h.eng.Resize(cols, rows); err != nil {
		return &EngineError{Op: "resize", Err: err}
	}

	h.dirty.resize(rows)
	return nil
}

// Write forwards the byte span to the engine's stream processor as-is. On
// success every row is marked dirty; precise dirty ranges are intentionally
// not computed. An engine failure leaves prior screen state valid.
func (h *Handle) Write(p []byte) error {
	if h == nil || h.closed {
		return ErrClosed
	}

	if err := h.eng.Feed(p); err != nil {
		return &EngineError{Op: "write", Err: err}
	}

	h.dirty.markAll()
	return nil
}

// Cols reports the current column count, 0 on a closed Handle.
func (h *Handle) Cols() int {
	if h == nil || h.closed {
		return 0
	}
	cols, _ := h.eng.Size()
	return cols
}

// Rows reports the current row count, 0 on a closed Handle.
func (h *Handle) Rows() int {
	if h == nil || h.closed {
		return 0
	}
	_, rows := h.eng.Size()
	return rows
}

// CursorX reports the cursor column in viewport coordinates.
func (h *Handle) CursorX() int {
	if h == nil || h.closed {
		return 0
	}
	x, _, _ := h.eng.Cursor()
	return x
}

// CursorY reports the cursor row in viewport coordinates.
func (h *Handle) CursorY() int {
	if h == nil || h.closed {
		return 0
	}
	_, y, _ := h.eng.Cursor()
	return y
}

// CursorVisible reports cursor visibility, false on a closed Handle.
func (h *Handle) CursorVisible() bool {
	if h == nil || h.closed {
		return false
	}
	_, _, visible := h.eng.Cursor()
	return visible
}

// ScrollbackLen reports the scrollback line count, capped at
// MaxScrollbackReport.
func (h *Handle) ScrollbackLen() int {
	if h == nil || h.closed {
		return 0
	}
	n := h.eng.ScrollbackLen()
	if n > MaxScrollbackReport {
		n = MaxScrollbackReport
	}
	return n
}

// Line resolves one viewport row into dst. row must be within [0, rows) and
// dst must hold at least the current column count. On success exactly cols
// cells are written, default cells included, and cols is returned. On any
// failure nothing is written.
func (h *Handle) Line(row int, dst []wire.Cell) (int, error) {
	if h == nil || h.closed {
		return 0, ErrClosed
	}

	cols, rows := h.eng.Size()
	if row < 0 || row >= rows {
		return 0, &RowOutOfRangeError{Row: row, Rows: rows}
	}
	if len(dst) < cols {
		return 0, &BufferTooSmallError{Need: cols, Have: len(dst)}
	}

	h.eng.ReadRow(row, func(col int, c Cell) {
		st, ok := h.eng.LookupStyle(c.StyleID)
		if !ok {
			// Unknown style ids fall back to the default style
			// rather than failing the read.
			st = Style{}
		}
		dst[col] = resolveCell(c, st, h.eng)
	})

	return cols, nil
}

// ScrollbackLine is a declared part of the boundary contract that is not
// implemented in this phase. It always reports ErrScrollbackUnsupported.
func (h *Handle) ScrollbackLine(row int, dst []wire.Cell) (int, error) {
	return 0, ErrScrollbackUnsupported
}

// IsDirty reports whether any row changed since the last ClearDirty.
func (h *Handle) IsDirty() bool {
	if h == nil || h.closed {
		return false
	}
	return h.dirty.any()
}

// IsRowDirty reports whether one row changed since the last ClearDirty.
// Out of range rows report false.
func (h *Handle) IsRowDirty(row int) bool {
	if h == nil || h.closed {
		return false
	}
	return h.dirty.row(row)
}

// ClearDirty marks every row clean. Nothing else ever clears dirty state.
func (h *Handle) ClearDirty() {
	if h == nil || h.closed {
		return
	}
	h.dirty.clear()
}

// Config returns the configuration the Handle was constructed with.
func (h *Handle) Config() Config {
	if h == nil {
		return Config{}
	}
	return h.cfg
}
