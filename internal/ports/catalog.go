package ports

import (
	"context"
	"io"

	"vsix-sync/internal/types"
)

// CatalogPort exposes the upstream marketplace: per-package release
// listings and artifact downloads. Transient network failures surface as
// errors; retrying is the adapter's concern, not the caller's.
type CatalogPort interface {
	ListReleases(ctx context.Context, packageID string) ([]types.PackageRelease, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
