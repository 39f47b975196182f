package ports

import "vsix-sync/internal/types"

// GalleryIndexPort persists a market's gallery index next to its VSIX
// files.
type GalleryIndexPort interface {
	Read(dir string) (types.GalleryIndex, error)
	Write(dir string, index types.GalleryIndex) error
}
