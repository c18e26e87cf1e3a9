//go:build !wasm

package wasm

import "go.uber.org/zap/zapcore"

// GuestFunctions lists every export a terminal guest module must provide.
// The host instance manager resolves and caches all of them at
// instantiation so a missing export fails fast instead of at first call.
var GuestFunctions = []string{
	FuncNew,
	FuncFree,
	FuncWrite,
	FuncResize,
	FuncGetCols,
	FuncGetRows,
	FuncGetCursorX,
	FuncGetCursorY,
	FuncGetCursorVisible,
	FuncGetScrollbackLength,
	FuncGetLine,
	FuncGetScrollbackLine,
	FuncIsDirty,
	FuncIsRowDirty,
	FuncClearDirty,
	FuncAlloc,
	FuncFreeBuf,
}

// LevelFromCode maps a host_log level code to a zap level. Unknown codes
// map to Error so nothing a guest reports is silently dropped.
func LevelFromCode(code uint32) zapcore.Level {
	switch code {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
