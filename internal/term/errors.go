package term

import (
	"errors"
	"fmt"
)

// ErrScrollbackUnsupported is reported by scrollback line reads, which are a
// declared but unimplemented part of the boundary contract. Callers must
// treat it as permanent.
var ErrScrollbackUnsupported = errors.New("scrollback line reads are not implemented")

// ErrClosed is reported by operations on a closed Handle.
var ErrClosed = errors.New("terminal handle is closed")

// InvalidSizeError occurs when construction or resize receives nonpositive
// dimensions.
type InvalidSizeError struct {
	Cols int
	Rows int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid terminal size %dx%d: dimensions must be positive", e.Cols, e.Rows)
}

// RowOutOfRangeError occurs when a line read addresses a row outside the
// viewport.
type RowOutOfRangeError struct {
	Row  int
	Rows int
}

func (e *RowOutOfRangeError) Error() string {
	return fmt.Sprintf("row %d out of range [0, %d)", e.Row, e.Rows)
}

// BufferTooSmallError occurs when a line read is given a destination shorter
// than the current column count.
type BufferTooSmallError struct {
	Need int
	Have int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("destination holds %d cells, need %d", e.Have, e.Need)
}

// EngineError wraps a failure reported by the terminal engine.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
