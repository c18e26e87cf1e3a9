package termabi

import (
	"sync"

	"github.com/woxQAQ/termwire/internal/term"
)

// Foreign callers hold only the uint32 token; every field access happens
// inside the boundary operations. Handles start at 1 and are never
// recycled, so a stale token can never alias a newer terminal.
var (
	registryMu sync.RWMutex
	registry   = make(map[uint32]*term.Handle)
	nextHandle uint32 = 1
)

func registerHandle(h *term.Handle) uint32 {
	registryMu.Lock()
	defer registryMu.Unlock()

	id := nextHandle
	nextHandle++
	registry[id] = h
	return id
}

func unregisterHandle(id uint32) *term.Handle {
	registryMu.Lock()
	defer registryMu.Unlock()

	h, ok := registry[id]
	if !ok {
		return nil
	}
	delete(registry, id)
	return h
}

func lookupHandle(id uint32) *term.Handle {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return registry[id]
}
