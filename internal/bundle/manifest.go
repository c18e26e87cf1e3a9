// Package bundle manages terminal guest bundles: directories pairing a
// bundle.yaml manifest with a Wasm artifact, discovered on disk, validated,
// and registered for instantiation.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Capabilities a guest bundle may declare.
const (
	CapabilityTerminal   = "terminal"
	CapabilityScrollback = "scrollback"
	CapabilityDirty      = "dirty"
)

// Manifest represents the bundle.yaml structure.
type Manifest struct {
	Name         string     `yaml:"name"`
	Version      string     `yaml:"version"`
	Description  string     `yaml:"description"`
	Engine       string     `yaml:"engine"`
	Wasm         WasmConfig `yaml:"wasm"`
	Capabilities []string   `yaml:"capabilities"`

	// Directory containing the manifest.
	dir string
}

// WasmConfig holds the guest artifact configuration.
type WasmConfig struct {
	// Artifact file name, relative to the bundle directory. Either a
	// .wasm binary or a .wasm.zst compressed one.
	File string `yaml:"file"`

	// Linear memory the guest expects, in 64KB pages. 0 accepts the
	// runtime default.
	MemoryPages uint32 `yaml:"memory_pages"`
}

// ParseManifest reads and validates bundle.yaml from a directory.
func ParseManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, "bundle.yaml")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &ManifestNotFoundError{
			Path: manifestPath,
			Err:  err,
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: manifestPath,
			Err:  err,
		}
	}

	m.dir = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "name",
			Message: "name is required",
		}
	}

	if m.Version == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "version",
			Message: "version is required",
		}
	}

	// Engine names the emulation core the guest embeds. Guests are free
	// to embed anything, so only presence is enforced.
	if m.Engine == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "engine",
			Message: "engine is required",
		}
	}

	if m.Wasm.File == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "wasm.file",
			Message: "wasm.file is required",
		}
	}

	if !strings.HasSuffix(m.Wasm.File, ".wasm") && !strings.HasSuffix(m.Wasm.File, ".wasm.zst") {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "wasm.file",
			Message: fmt.Sprintf("unrecognized artifact '%s' (must be a .wasm or .wasm.zst file)", m.Wasm.File),
		}
	}

	if len(m.Capabilities) == 0 {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "capabilities",
			Message: "at least one capability is required",
		}
	}

	validCaps := map[string]bool{
		CapabilityTerminal:   true,
		CapabilityScrollback: true,
		CapabilityDirty:      true,
	}
	for _, cap := range m.Capabilities {
		if !validCaps[cap] {
			return &ManifestValidationError{
				Path:    m.Path(),
				Field:   "capabilities",
				Message: fmt.Sprintf("unknown capability: %s (must be one of: terminal, scrollback, dirty)", cap),
			}
		}
	}

	artifactPath := m.ArtifactPath()
	if _, err := os.Stat(artifactPath); os.IsNotExist(err) {
		return &ArtifactNotFoundError{
			ManifestPath: m.Path(),
			Artifact:     m.Wasm.File,
		}
	}

	return nil
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, "bundle.yaml")
}

// ArtifactPath returns the absolute path to the guest artifact.
func (m *Manifest) ArtifactPath() string {
	return filepath.Join(m.dir, m.Wasm.File)
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return m.dir
}
