package types

// GalleryEntry is one record of a market's gallery index (gallery.json).
// The index remembers, per extension, which version is mirrored and the
// enabled state observed in the reference editor at mirror time.
type GalleryEntry struct {
	ID            string `json:"id"`
	Publisher     string `json:"publisher"`
	Name          string `json:"name"`
	DisplayName   string `json:"display_name,omitempty"`
	Version       string `json:"version"`
	EngineRange   string `json:"engine_range,omitempty"`
	SourceEnabled bool   `json:"source_enabled"`
	VsixPath      string `json:"vsix_path"`
}

// GalleryIndex maps lowercase extension id to its entry.
type GalleryIndex map[string]GalleryEntry
