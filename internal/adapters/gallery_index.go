package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"vsix-sync/internal/types"
)

const galleryIndexName = "gallery.json"

// GalleryIndexAdapter persists a market's gallery index as gallery.json
// inside the market directory.
type GalleryIndexAdapter struct{}

func NewGalleryIndexAdapter() GalleryIndexAdapter {
	return GalleryIndexAdapter{}
}

// Read loads the index. A missing or corrupt file yields an empty index so
// a fresh mirror run can rebuild it.
func (a GalleryIndexAdapter) Read(dir string) (types.GalleryIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, galleryIndexName))
	if err != nil {
		if os.IsNotExist(err) {
			return types.GalleryIndex{}, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read gallery index").
			WithCause(err)
	}
	var index types.GalleryIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return types.GalleryIndex{}, nil
	}
	if index == nil {
		index = types.GalleryIndex{}
	}
	return index, nil
}

func (a GalleryIndexAdapter) Write(dir string, index types.GalleryIndex) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create market directory").
			WithCause(err)
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode gallery index").
			WithCause(err)
	}
	if err := os.WriteFile(filepath.Join(dir, galleryIndexName), append(data, '\n'), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write gallery index").
			WithCause(err)
	}
	return nil
}
