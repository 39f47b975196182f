package ports

import (
	"context"

	"vsix-sync/internal/types"
)

// InstalledStatePort snapshots the extensions installed in one editor,
// keyed by lowercase extension id.
type InstalledStatePort interface {
	List(ctx context.Context) (map[string]types.InstalledExtension, error)
}
