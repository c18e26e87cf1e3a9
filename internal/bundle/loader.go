package bundle

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/woxQAQ/termwire/internal/wasm"
)

// Loader reads bundle directories and compiles their guest artifacts.
type Loader struct {
	moduleLoader *wasm.ModuleLoader
	logger       *zap.Logger
}

// NewLoader creates a bundle loader backed by a shared runtime.
func NewLoader(runtime *wasm.Runtime, logger *zap.Logger) *Loader {
	return &Loader{
		moduleLoader: wasm.NewModuleLoader(runtime, logger),
		logger:       logger.With(zap.String("component", "bundle-loader")),
	}
}

// LoadBundle loads a single bundle from its directory: parse the manifest,
// then compile the artifact it names.
func (l *Loader) LoadBundle(ctx context.Context, dir string) (*Bundle, error) {
	manifest, err := ParseManifest(dir)
	if err != nil {
		return nil, &BundleLoadError{Dir: dir, Err: err}
	}

	// The compile cache keys on Compiled.Name; instantiation must look the
	// module up under the same name the loader stored it with.
	compiled, err := l.moduleLoader.LoadModuleFromFile(ctx, manifest.ArtifactPath())
	if err != nil {
		return nil, &BundleLoadError{Dir: dir, Err: err}
	}

	bundle := &Bundle{
		Manifest: manifest,
		Compiled: compiled,
		LoadedAt: time.Now(),
	}

	l.logger.Info("Loaded bundle",
		zap.String("name", manifest.Name),
		zap.String("version", manifest.Version),
		zap.String("engine", manifest.Engine),
		zap.Strings("capabilities", manifest.Capabilities),
		zap.Int64("artifact_bytes", compiled.SizeBytes))

	return bundle, nil
}

// DiscoverBundles scans the immediate subdirectories of root for bundles.
// Directories that fail to load are logged and skipped so one broken bundle
// cannot block the rest.
func (l *Loader) DiscoverBundles(ctx context.Context, root string) ([]*Bundle, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NoBundlesFoundError{Dir: root}
		}
		return nil, err
	}

	var bundles []*Bundle
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "bundle.yaml")); err != nil {
			continue
		}

		bundle, err := l.LoadBundle(ctx, dir)
		if err != nil {
			l.logger.Warn("Skipping broken bundle",
				zap.String("dir", dir),
				zap.Error(err))
			continue
		}

		bundles = append(bundles, bundle)
	}

	if len(bundles) == 0 {
		return nil, &NoBundlesFoundError{Dir: root}
	}

	l.logger.Info("Bundle discovery complete",
		zap.String("root", root),
		zap.Int("loaded", len(bundles)))

	return bundles, nil
}
