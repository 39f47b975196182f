package adapters

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"vsix-sync/internal/ports"
	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

const galleryDownloadPrefix = "/marketplace/extensions/"

// GalleryServer answers VS Code style extensionquery requests from one
// market's gallery index and serves its VSIX files. The index is re-read
// per query so a concurrent mirror run is picked up without a restart.
type GalleryServer struct {
	Dir   string
	Index ports.GalleryIndexPort
}

func NewGalleryServer(dir string, index ports.GalleryIndexPort) *GalleryServer {
	return &GalleryServer{Dir: dir, Index: index}
}

func (s *GalleryServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/marketplace/extensionquery", s.handleQuery)
	mux.HandleFunc(galleryDownloadPrefix, s.handleDownload)
	return mux
}

type serveVersion struct {
	Version    string             `json:"version"`
	Properties []serveProperty    `json:"properties"`
	Files      []serveVersionFile `json:"files"`
}

type serveProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type serveVersionFile struct {
	AssetType string `json:"assetType"`
	Source    string `json:"source"`
}

type serveExtension struct {
	ExtensionName string         `json:"extensionName"`
	DisplayName   string         `json:"displayName,omitempty"`
	Publisher     servePublisher `json:"publisher"`
	Versions      []serveVersion `json:"versions"`
}

type servePublisher struct {
	PublisherName string `json:"publisherName"`
}

type serveResult struct {
	Extensions     []serveExtension      `json:"extensions"`
	PagingToken    *string               `json:"pagingToken"`
	ResultMetadata []serveResultMetadata `json:"resultMetadata"`
}

type serveResultMetadata struct {
	MetadataType  string              `json:"metadataType"`
	MetadataItems []serveMetadataItem `json:"metadataItems"`
}

type serveMetadataItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *GalleryServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var query galleryQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	index, err := s.Index.Read(s.Dir)
	if err != nil {
		http.Error(w, "gallery index unavailable", http.StatusInternalServerError)
		return
	}

	var extensions []serveExtension
	for _, filter := range query.Filters {
		for _, criterion := range filter.Criteria {
			if criterion.FilterType != galleryFilterTypeName {
				continue
			}
			entry, ok := index[shared.NormalizeExtensionID(criterion.Value)]
			if !ok {
				continue
			}
			extensions = append(extensions, s.extensionResponse(r, entry))
		}
	}

	response := struct {
		Results []serveResult `json:"results"`
	}{Results: []serveResult{{
		Extensions: extensions,
		ResultMetadata: []serveResultMetadata{{
			MetadataType: "ResultCount",
			MetadataItems: []serveMetadataItem{{
				Name:  "TotalCount",
				Count: len(extensions),
			}},
		}},
	}}}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode extensionquery response")
	}
}

// extensionResponse rewrites the stored entry so the client downloads the
// VSIX from this server instead of the upstream gallery.
func (s *GalleryServer) extensionResponse(r *http.Request, entry types.GalleryEntry) serveExtension {
	engineRange := entry.EngineRange
	if engineRange == "" {
		engineRange = "*"
	}
	source := "http://" + r.Host + galleryDownloadPrefix + entry.VsixPath
	return serveExtension{
		ExtensionName: entry.Name,
		DisplayName:   entry.DisplayName,
		Publisher:     servePublisher{PublisherName: entry.Publisher},
		Versions: []serveVersion{{
			Version: entry.Version,
			Properties: []serveProperty{{
				Key:   enginePropertyKey,
				Value: engineRange,
			}},
			Files: []serveVersionFile{{
				AssetType: vsixAssetType,
				Source:    source,
			}},
		}},
	}
}

func (s *GalleryServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, galleryDownloadPrefix)
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, vsixSuffix) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.Dir, name))
}
