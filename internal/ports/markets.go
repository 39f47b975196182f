package ports

import "vsix-sync/internal/types"

// MarketsPort loads and validates the markets spec file.
type MarketsPort interface {
	Load(path string) (types.MarketsSpec, error)
}
