//go:build wasm

// termwire-guest is the terminal guest module. Build it as a WASI reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o termwire.wasm ./cmd/termwire-guest
//
// The module exposes the termwire_* export surface and stays resident
// after _initialize; hosts drive it through exported function calls only.
package main

import (
	"github.com/woxQAQ/termwire/api/wasm"
	"github.com/woxQAQ/termwire/internal/termabi"
)

func init() {
	termabi.SetLogger(wasm.NewHostLogger())
}

// main never runs under -buildmode=c-shared; instantiation stops after
// package initialization.
func main() {}
