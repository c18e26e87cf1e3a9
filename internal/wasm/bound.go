package wasm

import (
	"context"

	"go.uber.org/zap"

	"github.com/woxQAQ/termwire/pkg/wire"
)

// BoundTerminal pins a RemoteTerminal to one context and flattens its
// returns to the sentinel style local handles use: query failures are
// logged and come back as zero values. This is the shape renderers and
// session drivers consume, so callers never special-case remote guests.
type BoundTerminal struct {
	ctx    context.Context
	t      *RemoteTerminal
	logger *zap.Logger
}

// Bind wraps the terminal for ctx-free callers.
func (t *RemoteTerminal) Bind(ctx context.Context) *BoundTerminal {
	return &BoundTerminal{
		ctx:    ctx,
		t:      t,
		logger: t.logger,
	}
}

func (b *BoundTerminal) Cols() int {
	return int(b.queryI32("cols", b.t.Cols))
}

func (b *BoundTerminal) Rows() int {
	return int(b.queryI32("rows", b.t.Rows))
}

func (b *BoundTerminal) CursorX() int {
	return int(b.queryI32("cursor_x", b.t.CursorX))
}

func (b *BoundTerminal) CursorY() int {
	return int(b.queryI32("cursor_y", b.t.CursorY))
}

func (b *BoundTerminal) ScrollbackLen() int {
	return int(b.queryI32("scrollback_length", b.t.ScrollbackLen))
}

func (b *BoundTerminal) CursorVisible() bool {
	v, err := b.t.CursorVisible(b.ctx)
	if err != nil {
		b.logQueryFailure("cursor_visible", err)
		return false
	}
	return v
}

func (b *BoundTerminal) IsDirty() bool {
	v, err := b.t.IsDirty(b.ctx)
	if err != nil {
		b.logQueryFailure("is_dirty", err)
		return false
	}
	return v
}

func (b *BoundTerminal) IsRowDirty(row int) bool {
	v, err := b.t.IsRowDirty(b.ctx, int32(row))
	if err != nil {
		b.logQueryFailure("is_row_dirty", err)
		return false
	}
	return v
}

func (b *BoundTerminal) ClearDirty() {
	if err := b.t.ClearDirty(b.ctx); err != nil {
		b.logQueryFailure("clear_dirty", err)
	}
}

func (b *BoundTerminal) Write(p []byte) error {
	return b.t.Write(b.ctx, p)
}

func (b *BoundTerminal) Resize(cols, rows int) error {
	return b.t.Resize(b.ctx, int32(cols), int32(rows))
}

// Line reads one row into dst. The guest reports the row at its own column
// count; dst must hold at least that many cells.
func (b *BoundTerminal) Line(row int, dst []wire.Cell) (int, error) {
	cells, err := b.t.Line(b.ctx, int32(row))
	if err != nil {
		return 0, err
	}
	if len(dst) < len(cells) {
		return 0, &LineReadError{Row: int32(row)}
	}
	return copy(dst, cells), nil
}

func (b *BoundTerminal) queryI32(name string, fn func(context.Context) (int32, error)) int32 {
	v, err := fn(b.ctx)
	if err != nil {
		b.logQueryFailure(name, err)
		return 0
	}
	return v
}

func (b *BoundTerminal) logQueryFailure(name string, err error) {
	b.logger.Warn("Guest query failed",
		zap.String("query", name),
		zap.Error(err))
}
