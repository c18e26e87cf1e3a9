package wasm

import "fmt"

// CompilationError occurs when guest module compilation fails.
type CompilationError struct {
	ModuleName string
	Err        error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile guest module '%s': %v", e.ModuleName, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// InstantiationError occurs when module instantiation fails.
type InstantiationError struct {
	ModuleName string
	InstanceID string
	Err        error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate module '%s' (instance: %s): %v",
		e.ModuleName, e.InstanceID, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// ModuleNotFoundError occurs when a module is not in the compile cache.
type ModuleNotFoundError struct {
	ModuleName string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module '%s' not found in cache", e.ModuleName)
}

// FunctionNotFoundError occurs when a guest export is missing.
type FunctionNotFoundError struct {
	ModuleName   string
	FunctionName string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function '%s' not found in module '%s'",
		e.FunctionName, e.ModuleName)
}

// TooManyInstancesError occurs when instantiation would exceed the
// configured instance limit.
type TooManyInstancesError struct {
	Limit int
}

func (e *TooManyInstancesError) Error() string {
	return fmt.Sprintf("instance limit reached (%d active)", e.Limit)
}

// GuestCallError occurs when calling a guest export fails.
type GuestCallError struct {
	ModuleName   string
	FunctionName string
	Err          error
}

func (e *GuestCallError) Error() string {
	return fmt.Sprintf("guest call '%s' on module '%s' failed: %v",
		e.FunctionName, e.ModuleName, e.Err)
}

func (e *GuestCallError) Unwrap() error {
	return e.Err
}

// MemoryAccessError occurs when a linear memory operation fails.
type MemoryAccessError struct {
	Operation string
	Address   uint32
	Length    uint32
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("memory access failed (op=%s, addr=%d, len=%d)",
		e.Operation, e.Address, e.Length)
}

// NullHandleError occurs when the guest reports failed terminal
// construction by returning handle 0.
type NullHandleError struct {
	Cols int32
	Rows int32
}

func (e *NullHandleError) Error() string {
	return fmt.Sprintf("guest returned null terminal handle for %dx%d", e.Cols, e.Rows)
}

// LineReadError occurs when the guest reports a failed row read.
type LineReadError struct {
	Row        int32
	Scrollback bool
}

func (e *LineReadError) Error() string {
	if e.Scrollback {
		return fmt.Sprintf("guest reported failure reading scrollback row %d", e.Row)
	}
	return fmt.Sprintf("guest reported failure reading row %d", e.Row)
}

// AllocError occurs when the guest boundary allocator returns null.
type AllocError struct {
	Size uint32
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("guest allocation of %d bytes returned null", e.Size)
}
