package wasm

import (
	"github.com/tetratelabs/wazero/api"
)

// Memory provides bounds-checked operations on a guest's linear memory.
//
// Guest memory is separate from Go's heap; every pointer crossing the
// boundary is an offset into it. All operations validate the address range
// and surface MemoryAccessError instead of faulting.
type Memory struct {
	mem api.Memory
}

// NewMemory creates a memory helper for a module instance.
func NewMemory(module api.Module) *Memory {
	return &Memory{mem: module.Memory()}
}

// ReadBytes reads length bytes at ptr. The returned slice is a view of the
// guest's memory, valid until the next guest call; copy it to retain.
func (m *Memory) ReadBytes(ptr, length uint32) ([]byte, error) {
	buf, ok := m.mem.Read(ptr, length)
	if !ok {
		return nil, &MemoryAccessError{Operation: "read", Address: ptr, Length: length}
	}
	return buf, nil
}

// WriteBytes writes data at ptr. The range must lie within memory the
// guest allocated for the purpose.
func (m *Memory) WriteBytes(ptr uint32, data []byte) error {
	if !m.mem.Write(ptr, data) {
		return &MemoryAccessError{Operation: "write", Address: ptr, Length: uint32(len(data))}
	}
	return nil
}

// ReadString reads a length-delimited UTF-8 string at ptr.
func (m *Memory) ReadString(ptr, length uint32) (string, error) {
	buf, err := m.ReadBytes(ptr, length)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Size reports the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}
