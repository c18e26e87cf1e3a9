//go:build wasm

package wasm

// This file defines the Wasm export surface of a terminal guest module.
//
// NOTE: uint32 is used for pointers and lengths because WebAssembly uses a
// 32-bit linear memory model. All Wasm memory addresses are represented as
// 32-bit integers (addresses 0 to 4GB).
// See: https://github.com/golang/go/issues/59156

import (
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woxQAQ/termwire/internal/termabi"
	"github.com/woxQAQ/termwire/pkg/wire"
)

//go:wasmimport env host_log
func hostLog(level, ptr, size uint32)

func bytesAt(ptr, size uint32) []byte {
	if ptr == 0 || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), size)
}

//go:wasmexport termwire_new
func termwireNew(cols, rows int32, cfgPtr uint32) uint32 {
	if cfgPtr == 0 {
		return termabi.New(cols, rows, nil)
	}
	cfg, ok := wire.DecodeConfig(bytesAt(cfgPtr, wire.ConfigSize))
	if !ok {
		return 0
	}
	return termabi.New(cols, rows, &cfg)
}

//go:wasmexport termwire_free
func termwireFree(handle uint32) {
	termabi.Free(handle)
}

//go:wasmexport termwire_write
func termwireWrite(handle, ptr, size uint32) {
	termabi.Write(handle, bytesAt(ptr, size))
}

//go:wasmexport termwire_resize
func termwireResize(handle uint32, cols, rows int32) {
	termabi.Resize(handle, cols, rows)
}

//go:wasmexport termwire_get_cols
func termwireGetCols(handle uint32) int32 {
	return termabi.Cols(handle)
}

//go:wasmexport termwire_get_rows
func termwireGetRows(handle uint32) int32 {
	return termabi.Rows(handle)
}

//go:wasmexport termwire_get_cursor_x
func termwireGetCursorX(handle uint32) int32 {
	return termabi.CursorX(handle)
}

//go:wasmexport termwire_get_cursor_y
func termwireGetCursorY(handle uint32) int32 {
	return termabi.CursorY(handle)
}

//go:wasmexport termwire_get_cursor_visible
func termwireGetCursorVisible(handle uint32) int32 {
	return termabi.CursorVisible(handle)
}

//go:wasmexport termwire_get_scrollback_length
func termwireGetScrollbackLength(handle uint32) int32 {
	return termabi.ScrollbackLen(handle)
}

//go:wasmexport termwire_get_line
func termwireGetLine(handle uint32, row int32, ptr, capCells uint32) int32 {
	return termabi.Line(handle, row, bytesAt(ptr, capCells*wire.CellSize))
}

//go:wasmexport termwire_get_scrollback_line
func termwireGetScrollbackLine(handle uint32, row int32, ptr, capCells uint32) int32 {
	return termabi.ScrollbackLine(handle, row, bytesAt(ptr, capCells*wire.CellSize))
}

//go:wasmexport termwire_is_dirty
func termwireIsDirty(handle uint32) int32 {
	return termabi.IsDirty(handle)
}

//go:wasmexport termwire_is_row_dirty
func termwireIsRowDirty(handle uint32, row int32) int32 {
	return termabi.IsRowDirty(handle, row)
}

//go:wasmexport termwire_clear_dirty
func termwireClearDirty(handle uint32) {
	termabi.ClearDirty(handle)
}

//go:wasmexport termwire_alloc
func termwireAlloc(size uint32) uint32 {
	buf := termabi.Alloc(size)
	if buf == nil {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

//go:wasmexport termwire_free_buf
func termwireFreeBuf(ptr, size uint32) {
	termabi.FreeBuffer(uintptr(ptr), size)
}

// NewHostLogger builds a zap logger that ships encoded entries to the host
// through host_log, keeping the guest off stdio.
func NewHostLogger() *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = ""
	core := &hostCore{
		LevelEnabler: zapcore.DebugLevel,
		enc:          zapcore.NewJSONEncoder(cfg),
	}
	return zap.New(core)
}

type hostCore struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
}

func (c *hostCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &hostCore{LevelEnabler: c.LevelEnabler, enc: c.enc.Clone()}
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return clone
}

func (c *hostCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *hostCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	b := buf.Bytes()
	if len(b) == 0 {
		return nil
	}
	hostLog(levelCode(ent.Level), uint32(uintptr(unsafe.Pointer(&b[0]))), uint32(len(b)))
	return nil
}

func (c *hostCore) Sync() error { return nil }

func levelCode(l zapcore.Level) uint32 {
	switch {
	case l <= zapcore.DebugLevel:
		return LogLevelDebug
	case l == zapcore.InfoLevel:
		return LogLevelInfo
	case l == zapcore.WarnLevel:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}
