package bundle

import (
	"sync"

	"go.uber.org/zap"
)

// Registry tracks loaded bundles by name and by engine.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Bundle
	byEngine map[string][]*Bundle
	logger   *zap.Logger
}

// NewRegistry creates an empty bundle registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byName:   make(map[string]*Bundle),
		byEngine: make(map[string][]*Bundle),
		logger:   logger.With(zap.String("component", "bundle-registry")),
	}
}

// Register adds a bundle. Names are unique; engines may be shared by
// several bundles.
func (r *Registry) Register(b *Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := b.Name()
	if _, exists := r.byName[name]; exists {
		return &BundleAlreadyRegisteredError{Name: name}
	}

	r.byName[name] = b
	engine := b.Engine()
	r.byEngine[engine] = append(r.byEngine[engine], b)

	r.logger.Info("Registered bundle",
		zap.String("name", name),
		zap.String("version", b.Version()),
		zap.String("engine", engine))

	return nil
}

// Get returns a bundle by name.
func (r *Registry) Get(name string) (*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.byName[name]
	if !exists {
		return nil, &BundleNotFoundError{Name: name}
	}
	return b, nil
}

// FindByEngine returns all bundles embedding a given engine.
func (r *Registry) FindByEngine(engine string) []*Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bundles := r.byEngine[engine]
	result := make([]*Bundle, len(bundles))
	copy(result, bundles)
	return result
}

// List returns all registered bundles.
func (r *Registry) List() []*Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Bundle, 0, len(r.byName))
	for _, b := range r.byName {
		result = append(result, b)
	}
	return result
}

// Unregister removes a bundle by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, exists := r.byName[name]
	if !exists {
		return &BundleNotFoundError{Name: name}
	}

	delete(r.byName, name)

	engine := b.Engine()
	bundles := r.byEngine[engine]
	for i, candidate := range bundles {
		if candidate == b {
			r.byEngine[engine] = append(bundles[:i], bundles[i+1:]...)
			break
		}
	}
	if len(r.byEngine[engine]) == 0 {
		delete(r.byEngine, engine)
	}

	r.logger.Info("Unregistered bundle", zap.String("name", name))

	return nil
}

// Len returns the number of registered bundles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
