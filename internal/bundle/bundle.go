package bundle

import (
	"time"

	"github.com/woxQAQ/termwire/internal/wasm"
)

// Bundle is a loaded guest bundle: its manifest plus the compiled module.
type Bundle struct {
	Manifest *Manifest
	Compiled *wasm.CompiledModule
	LoadedAt time.Time
}

// Name returns the bundle name from the manifest.
func (b *Bundle) Name() string {
	return b.Manifest.Name
}

// Version returns the bundle version.
func (b *Bundle) Version() string {
	return b.Manifest.Version
}

// Engine returns the emulation core the guest embeds.
func (b *Bundle) Engine() string {
	return b.Manifest.Engine
}

// Capabilities returns the declared capability list.
func (b *Bundle) Capabilities() []string {
	return b.Manifest.Capabilities
}

// HasCapability reports whether the bundle declares a capability.
func (b *Bundle) HasCapability(cap string) bool {
	for _, c := range b.Manifest.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
