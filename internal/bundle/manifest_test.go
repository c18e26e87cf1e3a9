package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeBundle creates a bundle directory under root with the given
// manifest text and an artifact file, returning the directory path.
func writeBundle(t *testing.T, root, name, manifest string, artifacts ...string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, "bundle.yaml"), []byte(manifest), 0o644); err != nil {
			t.Fatalf("WriteFile manifest: %v", err)
		}
	}

	for _, artifact := range artifacts {
		if err := os.WriteFile(filepath.Join(dir, artifact), minimalWasm, 0o644); err != nil {
			t.Fatalf("WriteFile artifact: %v", err)
		}
	}

	return dir
}

const validManifest = `name: vt-basic
version: 1.2.0
description: Minimal VT guest
engine: headless-term
wasm:
  file: guest.wasm
  memory_pages: 64
capabilities:
  - terminal
  - dirty
`

func TestParseManifest(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "vt-basic", validManifest, "guest.wasm")

	m, err := ParseManifest(dir)
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}

	if m.Name != "vt-basic" {
		t.Errorf("Name = %q, want vt-basic", m.Name)
	}
	if m.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", m.Version)
	}
	if m.Engine != "headless-term" {
		t.Errorf("Engine = %q, want headless-term", m.Engine)
	}
	if m.Wasm.File != "guest.wasm" {
		t.Errorf("Wasm.File = %q, want guest.wasm", m.Wasm.File)
	}
	if m.Wasm.MemoryPages != 64 {
		t.Errorf("Wasm.MemoryPages = %d, want 64", m.Wasm.MemoryPages)
	}
	if len(m.Capabilities) != 2 {
		t.Errorf("Capabilities = %v, want two entries", m.Capabilities)
	}
	if m.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", m.Dir(), dir)
	}
	if m.Path() != filepath.Join(dir, "bundle.yaml") {
		t.Errorf("Path() = %q", m.Path())
	}
	if m.ArtifactPath() != filepath.Join(dir, "guest.wasm") {
		t.Errorf("ArtifactPath() = %q", m.ArtifactPath())
	}
}

func TestParseManifest_NotFound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	_, err := ParseManifest(dir)

	var notFound *ManifestNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ManifestNotFoundError", err)
	}
}

func TestParseManifest_InvalidYAML(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "broken", "name: [unclosed\n")

	_, err := ParseManifest(dir)

	var parseErr *ManifestParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ManifestParseError", err)
	}
}

func TestParseManifest_MissingArtifact(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "ghost", validManifest)

	_, err := ParseManifest(dir)

	var notFound *ArtifactNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ArtifactNotFoundError", err)
	}
	if notFound.Artifact != "guest.wasm" {
		t.Errorf("Artifact = %q, want guest.wasm", notFound.Artifact)
	}
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name      string
		manifest  string
		wantField string
	}{
		{
			name: "missing name",
			manifest: `version: 1.0.0
engine: headless-term
wasm:
  file: guest.wasm
capabilities: [terminal]
`,
			wantField: "name",
		},
		{
			name: "missing version",
			manifest: `name: guest
engine: headless-term
wasm:
  file: guest.wasm
capabilities: [terminal]
`,
			wantField: "version",
		},
		{
			name: "missing engine",
			manifest: `name: guest
version: 1.0.0
wasm:
  file: guest.wasm
capabilities: [terminal]
`,
			wantField: "engine",
		},
		{
			name: "missing artifact file",
			manifest: `name: guest
version: 1.0.0
engine: headless-term
capabilities: [terminal]
`,
			wantField: "wasm.file",
		},
		{
			name: "unrecognized artifact extension",
			manifest: `name: guest
version: 1.0.0
engine: headless-term
wasm:
  file: guest.dll
capabilities: [terminal]
`,
			wantField: "wasm.file",
		},
		{
			name: "no capabilities",
			manifest: `name: guest
version: 1.0.0
engine: headless-term
wasm:
  file: guest.wasm
`,
			wantField: "capabilities",
		},
		{
			name: "unknown capability",
			manifest: `name: guest
version: 1.0.0
engine: headless-term
wasm:
  file: guest.wasm
capabilities: [terminal, graphics]
`,
			wantField: "capabilities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeBundle(t, t.TempDir(), "guest", tt.manifest, "guest.wasm")

			_, err := ParseManifest(dir)

			var valErr *ManifestValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("error = %v, want *ManifestValidationError", err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.wantField)
			}
		})
	}
}

func TestManifestValidation_ZstdArtifactAccepted(t *testing.T) {
	manifest := `name: guest
version: 1.0.0
engine: headless-term
wasm:
  file: guest.wasm.zst
capabilities: [terminal]
`
	dir := writeBundle(t, t.TempDir(), "guest", manifest, "guest.wasm.zst")

	m, err := ParseManifest(dir)
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if m.Wasm.File != "guest.wasm.zst" {
		t.Errorf("Wasm.File = %q", m.Wasm.File)
	}
}
