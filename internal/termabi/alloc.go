package termabi

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"
)

// Boundary buffers are pinned in a package map keyed by the address of
// their first byte, keeping them alive while foreign callers hold only the
// raw pointer. The terminal never retains a reference to a boundary buffer
// past the call that received it.
var (
	buffersMu sync.Mutex
	buffers   = make(map[uintptr][]byte)
)

// Alloc returns a zeroed buffer of exactly size bytes for staging data
// across the boundary. Returns nil for size 0.
func Alloc(size uint32) []byte {
	if size == 0 {
		return nil
	}

	buf := make([]byte, size)
	buffersMu.Lock()
	buffers[uintptr(unsafe.Pointer(&buf[0]))] = buf
	buffersMu.Unlock()
	return buf
}

// FreeBuffer releases the buffer starting at ptr. size must match the size
// it was allocated with; a mismatch leaves the buffer pinned.
func FreeBuffer(ptr uintptr, size uint32) {
	buffersMu.Lock()
	defer buffersMu.Unlock()

	buf, ok := buffers[ptr]
	if !ok {
		return
	}
	if uint32(len(buf)) != size {
		logger.Warn("buffer freed with mismatched size",
			zap.Uint32("allocated", uint32(len(buf))),
			zap.Uint32("freed", size),
		)
		return
	}
	delete(buffers, ptr)
}
