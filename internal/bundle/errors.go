package bundle

import "fmt"

// ManifestNotFoundError indicates bundle.yaml could not be read.
type ManifestNotFoundError struct {
	Path string
	Err  error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest not found at %s: %v", e.Path, e.Err)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return e.Err
}

// ManifestParseError indicates bundle.yaml is not valid YAML.
type ManifestParseError struct {
	Path string
	Err  error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ManifestValidationError indicates a manifest field failed validation.
type ManifestValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ManifestValidationError) Error() string {
	return fmt.Sprintf("invalid manifest %s: field %s: %s", e.Path, e.Field, e.Message)
}

// ArtifactNotFoundError indicates the artifact named by the manifest is
// missing from the bundle directory.
type ArtifactNotFoundError struct {
	ManifestPath string
	Artifact     string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("manifest %s names artifact %s which does not exist", e.ManifestPath, e.Artifact)
}

// BundleLoadError indicates a bundle directory could not be loaded.
type BundleLoadError struct {
	Dir string
	Err error
}

func (e *BundleLoadError) Error() string {
	return fmt.Sprintf("failed to load bundle from %s: %v", e.Dir, e.Err)
}

func (e *BundleLoadError) Unwrap() error {
	return e.Err
}

// BundleNotFoundError indicates a lookup for an unregistered bundle.
type BundleNotFoundError struct {
	Name string
}

func (e *BundleNotFoundError) Error() string {
	return fmt.Sprintf("bundle not found: %s", e.Name)
}

// BundleAlreadyRegisteredError indicates a duplicate registration.
type BundleAlreadyRegisteredError struct {
	Name string
}

func (e *BundleAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("bundle already registered: %s", e.Name)
}

// NoBundlesFoundError indicates discovery found nothing loadable.
type NoBundlesFoundError struct {
	Dir string
}

func (e *NoBundlesFoundError) Error() string {
	return fmt.Sprintf("no bundles found under %s", e.Dir)
}
