// Package wasm declares the boundary contract between a terminal guest
// module and its host: the export names the guest provides, the host_log
// import the guest may call, and the log level codes carried across it.
package wasm

// Export names a terminal guest module provides.
const (
	FuncNew                 = "termwire_new"
	FuncFree                = "termwire_free"
	FuncWrite               = "termwire_write"
	FuncResize              = "termwire_resize"
	FuncGetCols             = "termwire_get_cols"
	FuncGetRows             = "termwire_get_rows"
	FuncGetCursorX          = "termwire_get_cursor_x"
	FuncGetCursorY          = "termwire_get_cursor_y"
	FuncGetCursorVisible    = "termwire_get_cursor_visible"
	FuncGetScrollbackLength = "termwire_get_scrollback_length"
	FuncGetLine             = "termwire_get_line"
	FuncGetScrollbackLine   = "termwire_get_scrollback_line"
	FuncIsDirty             = "termwire_is_dirty"
	FuncIsRowDirty          = "termwire_is_row_dirty"
	FuncClearDirty          = "termwire_clear_dirty"
	FuncAlloc               = "termwire_alloc"
	FuncFreeBuf             = "termwire_free_buf"
)

// Import the host provides for guest diagnostics.
const (
	HostModuleName = "env"
	HostLogName    = "host_log"
)

// Log level codes carried over host_log.
const (
	LogLevelDebug uint32 = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)
