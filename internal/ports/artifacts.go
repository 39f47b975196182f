package ports

import "io"

// ArtifactStorePort is one market's local VSIX cache.
type ArtifactStorePort interface {
	Put(packageID string, version string, data io.Reader) (string, error)
	Has(packageID string, version string) (bool, error)
	Location(packageID string, version string) string
	// ListStale returns cached artifact locations for packageID other than
	// keepVersion, so superseded files can be removed.
	ListStale(packageID string, keepVersion string) ([]string, error)
	// ListUnexpected returns all cached artifacts whose file name is not in
	// the expected set, for the post-mirror cleanup pass.
	ListUnexpected(expected map[string]struct{}) ([]string, error)
	Remove(location string) error
}
