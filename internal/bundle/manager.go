package bundle

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/woxQAQ/termwire/internal/wasm"
)

// Manager ties the bundle layer together: it discovers bundles under a
// directory, registers them, and instantiates guests from them.
type Manager struct {
	dir string

	runtime     *wasm.Runtime
	loader      *Loader
	registry    *Registry
	instanceMgr *wasm.InstanceManager
	logger      *zap.Logger

	mu     sync.Mutex
	loaded bool
}

// NewManager creates a bundle manager over a shared runtime.
func NewManager(dir string, runtime *wasm.Runtime, hostFuncs *wasm.HostFunctions, logger *zap.Logger) *Manager {
	return &Manager{
		dir:         dir,
		runtime:     runtime,
		loader:      NewLoader(runtime, logger),
		registry:    NewRegistry(logger),
		instanceMgr: wasm.NewInstanceManager(runtime, hostFuncs, logger),
		logger:      logger.With(zap.String("component", "bundle-manager")),
	}
}

// LoadAll discovers and registers every bundle under the manager's
// directory. An empty directory is not an error; running with zero bundles
// is a valid deployment.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return nil
	}

	bundles, err := m.loader.DiscoverBundles(ctx, m.dir)
	if err != nil {
		var notFound *NoBundlesFoundError
		if errors.As(err, &notFound) {
			m.logger.Warn("No bundles found", zap.String("dir", m.dir))
			m.loaded = true
			return nil
		}
		return err
	}

	for _, b := range bundles {
		if err := m.registry.Register(b); err != nil {
			m.logger.Warn("Skipping bundle",
				zap.String("name", b.Name()),
				zap.Error(err))
		}
	}

	m.loaded = true
	return nil
}

// Get returns a registered bundle by name.
func (m *Manager) Get(name string) (*Bundle, error) {
	return m.registry.Get(name)
}

// FindByEngine returns all registered bundles embedding a given engine.
func (m *Manager) FindByEngine(engine string) []*Bundle {
	return m.registry.FindByEngine(engine)
}

// Instantiate creates a fresh guest instance from a registered bundle.
func (m *Manager) Instantiate(ctx context.Context, name string) (*wasm.Instance, error) {
	b, err := m.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if want := b.Manifest.Wasm.MemoryPages; want > 0 && want > m.runtime.MemoryPages() {
		m.logger.Warn("Bundle wants more memory than the runtime allows",
			zap.String("bundle", name),
			zap.Uint32("requested_pages", want),
			zap.Uint32("limit_pages", m.runtime.MemoryPages()))
	}

	return m.instanceMgr.Instantiate(ctx, &wasm.InstanceConfig{
		ModuleName: b.Compiled.Name,
	})
}

// Registry exposes the underlying registry for listing.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// IsLoaded reports whether LoadAll has completed.
func (m *Manager) IsLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Shutdown closes every live instance and the runtime itself.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down bundle manager")
	return m.runtime.Close(ctx)
}
