// Package wasm runs terminal guest modules on the host side: a shared
// wazero runtime, a compile cache, instance management with the host_log
// import, and a remote proxy that drives a guest terminal through its
// exported boundary functions.
package wasm

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

// Runtime owns the wazero runtime for the whole process. Guest modules are
// compiled once into the module cache and instantiated any number of times.
type Runtime struct {
	runtime wazero.Runtime

	// Compiled module cache, keyed by module name/path. Compilation is
	// the expensive step and is done once per module.
	modules sync.Map // map[string]*CompiledModule

	// Active instances, keyed by instance ID, for cleanup on shutdown.
	instances sync.Map // map[string]*Instance

	config *RuntimeConfig
	logger *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// RuntimeConfig holds runtime configuration.
type RuntimeConfig struct {
	// Memory limit per module in 64KB pages. Default 256 pages = 16MB.
	MemoryPages uint32

	// Retain DWARF debug info for guest stack traces.
	DebugEnabled bool

	// Compilation cache directory. Empty means in-memory caching only.
	CacheDir string

	// Maximum number of concurrently live instances.
	MaxInstances int
}

// CompiledModule wraps a wazero.CompiledModule with metadata.
type CompiledModule struct {
	Module wazero.CompiledModule

	Name      string
	Source    string
	SizeBytes int64

	CompiledAt int64
}

// NewRuntime creates the shared wazero runtime. Call once during startup.
// WASI is instantiated up front because terminal guests are wasip1 builds.
func NewRuntime(ctx context.Context, logger *zap.Logger, config *RuntimeConfig) (*Runtime, error) {
	if config == nil {
		config = DefaultRuntimeConfig()
	}

	rc := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(config.MemoryPages).
		WithDebugInfoEnabled(config.DebugEnabled)

	if config.CacheDir != "" {
		cache, err := wazero.NewCompilationCacheWithDir(config.CacheDir)
		if err != nil {
			return nil, err
		}
		rc = rc.WithCompilationCache(cache)
	}

	r := wazero.NewRuntimeWithConfig(ctx, rc)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	runtime := &Runtime{
		runtime: r,
		config:  config,
		logger:  logger.With(zap.String("component", "wasm-runtime")),
		closed:  make(chan struct{}),
	}

	runtime.logger.Info("Wasm runtime initialized",
		zap.Uint32("memory_pages", config.MemoryPages),
		zap.Bool("debug_enabled", config.DebugEnabled),
		zap.String("cache_dir", config.CacheDir),
		zap.Int("max_instances", config.MaxInstances),
	)

	return runtime, nil
}

// DefaultRuntimeConfig returns sensible defaults.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		MemoryPages:  256, // 16MB
		DebugEnabled: false,
		CacheDir:     "",
		MaxInstances: 100,
	}
}

// Close shuts down the runtime, closing active instances first. Safe to
// call multiple times.
func (r *Runtime) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		r.logger.Info("Shutting down Wasm runtime")

		r.instances.Range(func(key, value interface{}) bool {
			if inst, ok := value.(interface{ Close(context.Context) error }); ok {
				if closeErr := inst.Close(ctx); closeErr != nil {
					r.logger.Warn("Failed to close instance",
						zap.String("instance_id", key.(string)),
						zap.Error(closeErr),
					)
				}
			}
			return true
		})

		// Closing the runtime releases compiled modules too.
		err = r.runtime.Close(ctx)

		close(r.closed)
		r.logger.Info("Wasm runtime shutdown complete")
	})

	return err
}

// GetCompiledModule retrieves a compiled module from cache.
func (r *Runtime) GetCompiledModule(name string) (*CompiledModule, bool) {
	if val, ok := r.modules.Load(name); ok {
		if mod, ok := val.(*CompiledModule); ok {
			return mod, true
		}
	}
	return nil, false
}

// StoreCompiledModule stores a compiled module in cache.
func (r *Runtime) StoreCompiledModule(module *CompiledModule) {
	r.modules.Store(module.Name, module)
}

// GetInstance retrieves an active instance.
func (r *Runtime) GetInstance(instanceID string) (interface{}, bool) {
	return r.instances.Load(instanceID)
}

// StoreInstance tracks an active instance.
func (r *Runtime) StoreInstance(instanceID string, instance interface{}) {
	r.instances.Store(instanceID, instance)
}

// DeleteInstance removes an instance from tracking.
func (r *Runtime) DeleteInstance(instanceID string) {
	r.instances.Delete(instanceID)
}

// MemoryPages returns the per-module linear memory limit, in 64KB pages.
func (r *Runtime) MemoryPages() uint32 {
	return r.config.MemoryPages
}

// InstanceCount reports the number of tracked instances.
func (r *Runtime) InstanceCount() int {
	count := 0
	r.instances.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

// IsClosed reports whether the runtime has been closed.
func (r *Runtime) IsClosed() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}
