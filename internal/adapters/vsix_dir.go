package adapters

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"vsix-sync/internal/shared"
)

const vsixSuffix = ".vsix"

// VsixDirAdapter stores one market's artifacts as flat
// "<id>-<version>.vsix" files in a single directory.
type VsixDirAdapter struct {
	Dir string
}

func NewVsixDirAdapter(dir string) VsixDirAdapter {
	return VsixDirAdapter{Dir: dir}
}

// VsixFileName renders the cache file name for an artifact.
func VsixFileName(packageID string, version string) string {
	return shared.NormalizeExtensionID(packageID) + "-" + version + vsixSuffix
}

// ParseVsixFileName splits a cache file name into id and version by the
// last hyphen. Returns ok=false for names that do not follow the scheme;
// versions must contain a dot so ids with hyphens never swallow them.
func ParseVsixFileName(name string) (string, string, bool) {
	if !strings.HasSuffix(name, vsixSuffix) {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, vsixSuffix)
	cut := strings.LastIndex(stem, "-")
	if cut <= 0 || cut == len(stem)-1 {
		return "", "", false
	}
	id := stem[:cut]
	version := stem[cut+1:]
	if !strings.Contains(version, ".") {
		return "", "", false
	}
	return shared.NormalizeExtensionID(id), version, true
}

func (a VsixDirAdapter) Put(packageID string, version string, data io.Reader) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create market directory").
			WithCause(err)
	}
	location := a.Location(packageID, version)
	file, err := os.Create(location)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create artifact file").
			WithCause(err)
	}
	if _, err := io.Copy(file, data); err != nil {
		_ = file.Close()
		_ = os.Remove(location)
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write artifact file").
			WithCause(err)
	}
	if err := file.Close(); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close artifact file").
			WithCause(err)
	}
	return location, nil
}

func (a VsixDirAdapter) Has(packageID string, version string) (bool, error) {
	_, err := os.Stat(a.Location(packageID, version))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to stat artifact file").
		WithCause(err)
}

func (a VsixDirAdapter) Location(packageID string, version string) string {
	return filepath.Join(a.Dir, VsixFileName(packageID, version))
}

func (a VsixDirAdapter) ListStale(packageID string, keepVersion string) ([]string, error) {
	id := shared.NormalizeExtensionID(packageID)
	var stale []string
	err := a.eachVsix(func(name string) {
		fileID, fileVersion, ok := ParseVsixFileName(name)
		if !ok || fileID != id {
			return
		}
		if fileVersion != keepVersion {
			stale = append(stale, filepath.Join(a.Dir, name))
		}
	})
	return stale, err
}

func (a VsixDirAdapter) ListUnexpected(expected map[string]struct{}) ([]string, error) {
	var unexpected []string
	err := a.eachVsix(func(name string) {
		if _, ok := expected[name]; !ok {
			unexpected = append(unexpected, filepath.Join(a.Dir, name))
		}
	})
	return unexpected, err
}

func (a VsixDirAdapter) Remove(location string) error {
	if err := os.Remove(location); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove artifact file").
			WithCause(err)
	}
	return nil
}

func (a VsixDirAdapter) eachVsix(visit func(name string)) error {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read market directory").
			WithCause(err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), vsixSuffix) {
			continue
		}
		visit(entry.Name())
	}
	return nil
}
