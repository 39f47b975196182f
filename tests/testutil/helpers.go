// Package testutil provides shared test helpers used across integration
// and e2e test packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vsix-sync/internal/types"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteMarketsSpec writes a markets yaml file into dir and returns its
// path.
func WriteMarketsSpec(t *testing.T, dir string, spec types.MarketsSpec) string {
	t.Helper()
	data, err := yaml.Marshal(spec)
	require.NoError(t, err)
	path := filepath.Join(dir, "markets.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// WriteEditorScript writes an executable shell script that mimics a VS
// Code style CLI: `--list-extensions --show-versions` prints the given
// id@version lines, every other invocation succeeds silently. It returns
// the script path to use as the editor CLI.
func WriteEditorScript(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	script := "#!/bin/sh\nif [ \"$1\" = \"--list-extensions\" ]; then\n"
	for _, line := range lines {
		script += "  echo \"" + line + "\"\n"
	}
	script += "fi\nexit 0\n"
	path := filepath.Join(dir, "fake-editor")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// GalleryExtension describes one extension served by NewGalleryServer.
type GalleryExtension struct {
	Publisher string
	Name      string
	Versions  []GalleryExtensionVersion
}

type GalleryExtensionVersion struct {
	Version     string
	EngineRange string
	Content     []byte
}

// NewGalleryServer starts an httptest server that answers extensionquery
// requests for the given extensions and serves their VSIX payloads.
func NewGalleryServer(t *testing.T, extensions map[string]GalleryExtension) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/extensionquery", func(w http.ResponseWriter, r *http.Request) {
		var query struct {
			Filters []struct {
				Criteria []struct {
					FilterType int    `json:"filterType"`
					Value      string `json:"value"`
				} `json:"criteria"`
			} `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))

		var matches []map[string]any
		for _, filter := range query.Filters {
			for _, criterion := range filter.Criteria {
				extension, ok := extensions[criterion.Value]
				if !ok {
					continue
				}
				var versions []map[string]any
				for _, version := range extension.Versions {
					versions = append(versions, map[string]any{
						"version": version.Version,
						"properties": []map[string]any{
							{"key": "Microsoft.VisualStudio.Code.Engine", "value": version.EngineRange},
						},
						"files": []map[string]any{{
							"assetType": "Microsoft.VisualStudio.Services.VSIXPackage",
							"source":    server.URL + "/vsix/" + criterion.Value + "-" + version.Version + ".vsix",
						}},
					})
				}
				matches = append(matches, map[string]any{
					"extensionName": extension.Name,
					"publisher":     map[string]any{"publisherName": extension.Publisher},
					"versions":      versions,
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"extensions": matches}},
		}))
	})

	mux.HandleFunc("/vsix/", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Path)
		for id, extension := range extensions {
			for _, version := range extension.Versions {
				if name == id+"-"+version.Version+".vsix" {
					_, _ = w.Write(version.Content)
					return
				}
			}
		}
		http.NotFound(w, r)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
