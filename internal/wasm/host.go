package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmapi "github.com/woxQAQ/termwire/api/wasm"
)

// HostFunctions implements the imports guest modules may call.
type HostFunctions struct {
	logger *zap.Logger
}

// NewHostFunctions creates the host function implementation.
func NewHostFunctions(logger *zap.Logger) *HostFunctions {
	return &HostFunctions{
		logger: logger.With(zap.String("component", "wasm-host")),
	}
}

// hostLog is called by guest modules to ship log entries to the host.
// Signature: host_log(level, ptr, length). Guests encode entries
// themselves; the host forwards the payload at the carried level.
func (h *HostFunctions) hostLog(ctx context.Context, mod api.Module, level, ptr, length uint32) {
	msg, ok := mod.Memory().Read(ptr, length)
	if !ok {
		h.logger.Error("Failed to read guest log message",
			zap.Uint32("ptr", ptr),
			zap.Uint32("length", length),
		)
		return
	}

	h.logger.Log(wasmapi.LevelFromCode(level), string(msg))
}
