package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmapi "github.com/woxQAQ/termwire/api/wasm"
	"github.com/woxQAQ/termwire/pkg/wire"
)

// RemoteTerminal drives one terminal living inside a guest instance. Every
// operation mirrors the boundary surface: scalars cross as function
// arguments, byte data is staged through the guest's own boundary
// allocator, and failures arrive as sentinels that are lifted back into
// errors here.
//
// A RemoteTerminal borrows its Instance; closing the terminal frees the
// guest-side handle but leaves the instance running.
type RemoteTerminal struct {
	inst   *Instance
	mem    *Memory
	handle uint32
	logger *zap.Logger
}

// NewRemoteTerminal constructs a terminal in the guest. A nil cfg applies
// the guest's defaults; otherwise the config record is staged into guest
// memory for the construction call and freed after.
func NewRemoteTerminal(ctx context.Context, inst *Instance, cols, rows int32, cfg *wire.Config, logger *zap.Logger) (*RemoteTerminal, error) {
	t := &RemoteTerminal{
		inst:   inst,
		mem:    inst.Memory(),
		logger: logger.With(zap.String("component", "remote-terminal")),
	}

	var cfgPtr uint32
	if cfg != nil {
		var buf [wire.ConfigSize]byte
		cfg.Encode(buf[:])

		ptr, err := t.alloc(ctx, wire.ConfigSize)
		if err != nil {
			return nil, err
		}
		defer t.free(ctx, ptr, wire.ConfigSize)

		if err := t.mem.WriteBytes(ptr, buf[:]); err != nil {
			return nil, err
		}
		cfgPtr = ptr
	}

	results, err := t.inst.call(ctx, wasmapi.FuncNew,
		api.EncodeI32(cols), api.EncodeI32(rows), api.EncodeU32(cfgPtr))
	if err != nil {
		return nil, err
	}

	handle := api.DecodeU32(results[0])
	if handle == 0 {
		return nil, &NullHandleError{Cols: cols, Rows: rows}
	}
	t.handle = handle

	t.logger.Info("Remote terminal constructed",
		zap.Uint32("handle", handle),
		zap.Int32("cols", cols),
		zap.Int32("rows", rows),
	)
	return t, nil
}

// Handle returns the guest-side handle token.
func (t *RemoteTerminal) Handle() uint32 {
	return t.handle
}

// Close frees the guest-side terminal. The null handle is a no-op on the
// guest, so Close is safe to call twice.
func (t *RemoteTerminal) Close(ctx context.Context) error {
	if t.handle == 0 {
		return nil
	}
	_, err := t.inst.call(ctx, wasmapi.FuncFree, api.EncodeU32(t.handle))
	t.handle = 0
	return err
}

// Write feeds p to the guest terminal's stream processor.
func (t *RemoteTerminal) Write(ctx context.Context, p []byte) error {
	if len(p) == 0 {
		return nil
	}

	size := uint32(len(p))
	ptr, err := t.alloc(ctx, size)
	if err != nil {
		return err
	}
	defer t.free(ctx, ptr, size)

	if err := t.mem.WriteBytes(ptr, p); err != nil {
		return err
	}

	_, err = t.inst.call(ctx, wasmapi.FuncWrite,
		api.EncodeU32(t.handle), api.EncodeU32(ptr), api.EncodeU32(size))
	return err
}

// Resize changes the guest terminal's grid dimensions.
func (t *RemoteTerminal) Resize(ctx context.Context, cols, rows int32) error {
	_, err := t.inst.call(ctx, wasmapi.FuncResize,
		api.EncodeU32(t.handle), api.EncodeI32(cols), api.EncodeI32(rows))
	return err
}

// Cols reports the current column count.
func (t *RemoteTerminal) Cols(ctx context.Context) (int32, error) {
	return t.queryI32(ctx, wasmapi.FuncGetCols)
}

// Rows reports the current row count.
func (t *RemoteTerminal) Rows(ctx context.Context) (int32, error) {
	return t.queryI32(ctx, wasmapi.FuncGetRows)
}

// CursorX reports the cursor column in viewport coordinates.
func (t *RemoteTerminal) CursorX(ctx context.Context) (int32, error) {
	return t.queryI32(ctx, wasmapi.FuncGetCursorX)
}

// CursorY reports the cursor row in viewport coordinates.
func (t *RemoteTerminal) CursorY(ctx context.Context) (int32, error) {
	return t.queryI32(ctx, wasmapi.FuncGetCursorY)
}

// CursorVisible reports cursor visibility.
func (t *RemoteTerminal) CursorVisible(ctx context.Context) (bool, error) {
	v, err := t.queryI32(ctx, wasmapi.FuncGetCursorVisible)
	return v != 0, err
}

// ScrollbackLen reports the guest's scrollback line count.
func (t *RemoteTerminal) ScrollbackLen(ctx context.Context) (int32, error) {
	return t.queryI32(ctx, wasmapi.FuncGetScrollbackLength)
}

// Line reads one viewport row, returning the decoded wire cells. The
// output buffer is staged in guest memory sized to the current column
// count and freed before returning.
func (t *RemoteTerminal) Line(ctx context.Context, row int32) ([]wire.Cell, error) {
	cols, err := t.Cols(ctx)
	if err != nil {
		return nil, err
	}
	if cols <= 0 {
		return nil, &LineReadError{Row: row}
	}

	size := uint32(cols) * wire.CellSize
	ptr, err := t.alloc(ctx, size)
	if err != nil {
		return nil, err
	}
	defer t.free(ctx, ptr, size)

	results, err := t.inst.call(ctx, wasmapi.FuncGetLine,
		api.EncodeU32(t.handle), api.EncodeI32(row), api.EncodeU32(ptr), api.EncodeU32(uint32(cols)))
	if err != nil {
		return nil, err
	}

	n := api.DecodeI32(results[0])
	if n < 0 {
		return nil, &LineReadError{Row: row}
	}

	raw, err := t.mem.ReadBytes(ptr, uint32(n)*wire.CellSize)
	if err != nil {
		return nil, err
	}

	cells := make([]wire.Cell, n)
	for i := range cells {
		cells[i], _ = wire.DecodeCell(raw[i*wire.CellSize:])
	}
	return cells, nil
}

// ScrollbackLine reads one scrollback-relative row. The guest declares
// this operation but reports failure until it is implemented; the error
// surfaces here as a scrollback LineReadError.
func (t *RemoteTerminal) ScrollbackLine(ctx context.Context, row int32) ([]wire.Cell, error) {
	cols, err := t.Cols(ctx)
	if err != nil {
		return nil, err
	}
	if cols <= 0 {
		return nil, &LineReadError{Row: row, Scrollback: true}
	}

	size := uint32(cols) * wire.CellSize
	ptr, err := t.alloc(ctx, size)
	if err != nil {
		return nil, err
	}
	defer t.free(ctx, ptr, size)

	results, err := t.inst.call(ctx, wasmapi.FuncGetScrollbackLine,
		api.EncodeU32(t.handle), api.EncodeI32(row), api.EncodeU32(ptr), api.EncodeU32(uint32(cols)))
	if err != nil {
		return nil, err
	}

	n := api.DecodeI32(results[0])
	if n < 0 {
		return nil, &LineReadError{Row: row, Scrollback: true}
	}

	raw, err := t.mem.ReadBytes(ptr, uint32(n)*wire.CellSize)
	if err != nil {
		return nil, err
	}

	cells := make([]wire.Cell, n)
	for i := range cells {
		cells[i], _ = wire.DecodeCell(raw[i*wire.CellSize:])
	}
	return cells, nil
}

// IsDirty reports whether any row changed since the last ClearDirty.
func (t *RemoteTerminal) IsDirty(ctx context.Context) (bool, error) {
	v, err := t.queryI32(ctx, wasmapi.FuncIsDirty)
	return v != 0, err
}

// IsRowDirty reports whether one row changed since the last ClearDirty.
func (t *RemoteTerminal) IsRowDirty(ctx context.Context, row int32) (bool, error) {
	results, err := t.inst.call(ctx, wasmapi.FuncIsRowDirty,
		api.EncodeU32(t.handle), api.EncodeI32(row))
	if err != nil {
		return false, err
	}
	return api.DecodeI32(results[0]) != 0, nil
}

// ClearDirty marks every guest row clean.
func (t *RemoteTerminal) ClearDirty(ctx context.Context) error {
	_, err := t.inst.call(ctx, wasmapi.FuncClearDirty, api.EncodeU32(t.handle))
	return err
}

func (t *RemoteTerminal) queryI32(ctx context.Context, fn string) (int32, error) {
	results, err := t.inst.call(ctx, fn, api.EncodeU32(t.handle))
	if err != nil {
		return 0, err
	}
	return api.DecodeI32(results[0]), nil
}

// alloc stages a buffer in guest memory through the boundary allocator.
func (t *RemoteTerminal) alloc(ctx context.Context, size uint32) (uint32, error) {
	results, err := t.inst.call(ctx, wasmapi.FuncAlloc, api.EncodeU32(size))
	if err != nil {
		return 0, err
	}

	ptr := api.DecodeU32(results[0])
	if ptr == 0 {
		return 0, &AllocError{Size: size}
	}
	return ptr, nil
}

// free releases a staged buffer. Failures are logged, not propagated; a
// leaked staging buffer does not invalidate the operation that used it.
func (t *RemoteTerminal) free(ctx context.Context, ptr, size uint32) {
	if _, err := t.inst.call(ctx, wasmapi.FuncFreeBuf, api.EncodeU32(ptr), api.EncodeU32(size)); err != nil {
		t.logger.Warn("Failed to free guest buffer",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err),
		)
	}
}
