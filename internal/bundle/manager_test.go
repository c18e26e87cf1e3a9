package bundle

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	wasmapi "github.com/woxQAQ/termwire/api/wasm"
	"github.com/woxQAQ/termwire/internal/wasm"
)

func newTestManager(t *testing.T, dir string) *Manager {
	t.Helper()

	logger := zaptest.NewLogger(t)
	runtime := newTestRuntime(t)
	return NewManager(dir, runtime, wasm.NewHostFunctions(logger), logger)
}

func managerTestRoot(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeBundle(t, root, "alpha", `name: alpha
version: 1.0.0
engine: headless-term
wasm:
  file: guest.wasm
capabilities: [terminal]
`, "guest.wasm")
	writeBundle(t, root, "beta", `name: beta
version: 2.0.0
engine: homegrown
wasm:
  file: guest.wasm
capabilities: [terminal, dirty]
`, "guest.wasm")
	return root
}

func TestManager_LoadAll(t *testing.T) {
	m := newTestManager(t, managerTestRoot(t))

	if m.IsLoaded() {
		t.Error("IsLoaded = true before LoadAll")
	}

	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if !m.IsLoaded() {
		t.Error("IsLoaded = false after LoadAll")
	}
	if got := m.Registry().Len(); got != 2 {
		t.Errorf("registered %d bundles, want 2", got)
	}

	b, err := m.Get("alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if b.Version() != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", b.Version())
	}

	if got := m.FindByEngine("homegrown"); len(got) != 1 {
		t.Errorf("FindByEngine(homegrown) returned %d bundles, want 1", len(got))
	}

	// A second LoadAll is a no-op, not a duplicate registration storm.
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("second LoadAll failed: %v", err)
	}
	if got := m.Registry().Len(); got != 2 {
		t.Errorf("registered %d bundles after reload, want 2", got)
	}
}

func TestManager_LoadAll_EmptyDir(t *testing.T) {
	m := newTestManager(t, t.TempDir())

	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll on empty dir failed: %v", err)
	}
	if !m.IsLoaded() {
		t.Error("IsLoaded = false after LoadAll")
	}
	if got := m.Registry().Len(); got != 0 {
		t.Errorf("registered %d bundles, want 0", got)
	}
}

func TestManager_Get_NotRegistered(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	_, err := m.Get("missing")

	var notFound *BundleNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *BundleNotFoundError", err)
	}
}

func TestManager_Instantiate_UnknownBundle(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	_, err := m.Instantiate(context.Background(), "missing")

	var notFound *BundleNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *BundleNotFoundError", err)
	}
}

func TestManager_Instantiate_GuestWithoutExports(t *testing.T) {
	m := newTestManager(t, managerTestRoot(t))
	if err := m.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	// The fixture guest carries no boundary exports, so instantiation must
	// get past module lookup and fail on export resolution. A
	// ModuleNotFoundError here would mean the manager looked the module up
	// under a different name than the loader cached it with.
	_, err := m.Instantiate(context.Background(), "alpha")

	var fnErr *wasm.FunctionNotFoundError
	if !errors.As(err, &fnErr) {
		t.Fatalf("error = %v, want *wasm.FunctionNotFoundError", err)
	}
	if fnErr.FunctionName != wasmapi.FuncNew {
		t.Errorf("FunctionName = %q, want %q", fnErr.FunctionName, wasmapi.FuncNew)
	}
}

func TestManager_Shutdown(t *testing.T) {
	logger := zaptest.NewLogger(t)
	runtime, err := wasm.NewRuntime(context.Background(), logger, nil)
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	m := NewManager(t.TempDir(), runtime, wasm.NewHostFunctions(logger), logger)

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !runtime.IsClosed() {
		t.Error("runtime still open after Shutdown")
	}
}
