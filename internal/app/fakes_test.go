package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"time"

	"vsix-sync/internal/adapters"
	"vsix-sync/internal/ports"
	"vsix-sync/internal/types"
)

type fakeMarkets struct {
	spec types.MarketsSpec
	err  error
}

func (f fakeMarkets) Load(string) (types.MarketsSpec, error) {
	return f.spec, f.err
}

type fakeIndex struct {
	mu      sync.Mutex
	indexes map[string]types.GalleryIndex
	readErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexes: map[string]types.GalleryIndex{}}
}

func (f *fakeIndex) Read(dir string) (types.GalleryIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	index, ok := f.indexes[dir]
	if !ok {
		return types.GalleryIndex{}, nil
	}
	return index, nil
}

func (f *fakeIndex) Write(dir string, index types.GalleryIndex) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexes[dir] = index
	return nil
}

type fakeInstalled struct {
	installed map[string]types.InstalledExtension
	err       error
}

func (f fakeInstalled) List(context.Context) (map[string]types.InstalledExtension, error) {
	return f.installed, f.err
}

type fakeCatalog struct {
	mu        sync.Mutex
	releases  map[string][]types.PackageRelease
	listErrs  map[string]error
	artifacts map[string][]byte
	listCalls map[string]int
	downloads []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		releases:  map[string][]types.PackageRelease{},
		listErrs:  map[string]error{},
		artifacts: map[string][]byte{},
		listCalls: map[string]int{},
	}
}

func (f *fakeCatalog) ListReleases(_ context.Context, packageID string) ([]types.PackageRelease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls[packageID]++
	if err, ok := f.listErrs[packageID]; ok {
		return nil, err
	}
	return f.releases[packageID], nil
}

func (f *fakeCatalog) Download(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, url)
	data, ok := f.artifacts[url]
	if !ok {
		return nil, errors.New("download failed: " + url)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// fakeStore keeps one market's VSIX files in memory, keyed by file name.
type fakeStore struct {
	mu    sync.Mutex
	dir   string
	files map[string][]byte
}

func newFakeStore(dir string) *fakeStore {
	return &fakeStore{dir: dir, files: map[string][]byte{}}
}

func (f *fakeStore) Put(packageID string, version string, data io.Reader) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	name := adapters.VsixFileName(packageID, version)
	f.mu.Lock()
	f.files[name] = content
	f.mu.Unlock()
	return f.Location(packageID, version), nil
}

func (f *fakeStore) Has(packageID string, version string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[adapters.VsixFileName(packageID, version)]
	return ok, nil
}

func (f *fakeStore) Location(packageID string, version string) string {
	return filepath.Join(f.dir, adapters.VsixFileName(packageID, version))
}

func (f *fakeStore) ListStale(packageID string, keepVersion string) ([]string, error) {
	keep := adapters.VsixFileName(packageID, keepVersion)
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []string
	for name := range f.files {
		id, _, ok := adapters.ParseVsixFileName(name)
		if ok && id == packageID && name != keep {
			stale = append(stale, filepath.Join(f.dir, name))
		}
	}
	return stale, nil
}

func (f *fakeStore) ListUnexpected(expected map[string]struct{}) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var unexpected []string
	for name := range f.files {
		if _, ok := expected[name]; !ok {
			unexpected = append(unexpected, filepath.Join(f.dir, name))
		}
	}
	return unexpected, nil
}

func (f *fakeStore) Remove(location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, filepath.Base(location))
	return nil
}

type fakeExecutor struct {
	applied []types.Action
	failIDs map[string]struct{}
}

func (f *fakeExecutor) Apply(_ context.Context, action types.Action) error {
	f.applied = append(f.applied, action)
	if _, ok := f.failIDs[action.ID]; ok {
		return errors.New("editor CLI action failed: " + action.ID)
	}
	return nil
}

// testService wires a Service entirely from fakes. Stores are shared per
// directory so tests can inspect what was written.
type testService struct {
	Service
	index    *fakeIndex
	catalog  *fakeCatalog
	stores   map[string]*fakeStore
	executor *fakeExecutor
	// executorCLI records the CLI name Apply resolved.
	executorCLI string
}

func newTestService(spec types.MarketsSpec, installed map[string]types.InstalledExtension) *testService {
	ts := &testService{
		index:    newFakeIndex(),
		catalog:  newFakeCatalog(),
		stores:   map[string]*fakeStore{},
		executor: &fakeExecutor{},
	}
	ts.Service = Service{
		Markets:      fakeMarkets{spec: spec},
		GalleryIndex: ts.index,
		NewInstalled: func(string, string) ports.InstalledStatePort {
			return fakeInstalled{installed: installed}
		},
		NewCatalog: func(string, int, int, int) ports.CatalogPort {
			return ts.catalog
		},
		NewStore: func(dir string) ports.ArtifactStorePort {
			return ts.store(dir)
		},
		NewExecutor: func(cli string) ports.ExecutorPort {
			ts.executorCLI = cli
			return ts.executor
		},
		Clock: func() time.Time { return time.Unix(1756600000, 0) },
	}
	return ts
}

func (ts *testService) store(dir string) *fakeStore {
	if store, ok := ts.stores[dir]; ok {
		return store
	}
	store := newFakeStore(dir)
	ts.stores[dir] = store
	return store
}

func twoMarketSpec() types.MarketsSpec {
	return types.MarketsSpec{
		APIVersion: "v1",
		Markets: []types.Market{
			{Name: "stable", Engine: "1.93.0", Directory: "/markets/stable"},
			{Name: "legacy", Engine: "1.85.0", Directory: "/markets/legacy"},
		},
		Defaults: types.MarketsDefaults{EditorCLI: "codium"},
	}
}
