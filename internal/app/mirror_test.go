package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsix-sync/internal/ports"
	"vsix-sync/internal/types"
)

func golangReleases() []types.PackageRelease {
	return []types.PackageRelease{
		{
			PackageID:   "golang.go",
			Version:     "2.0.0",
			EngineRange: "^1.90.0",
			ArtifactURL: "https://cdn.test/golang.go-2.0.0.vsix",
		},
		{
			PackageID:   "golang.go",
			Version:     "1.0.0",
			EngineRange: ">=1.80.0 <1.90.0",
			ArtifactURL: "https://cdn.test/golang.go-1.0.0.vsix",
		},
	}
}

func TestMirrorSelectsPerMarketVersions(t *testing.T) {
	installed := map[string]types.InstalledExtension{
		"golang.go": {ID: "golang.go", Version: "1.0.0", Enabled: false},
	}
	ts := newTestService(twoMarketSpec(), installed)
	ts.catalog.releases["golang.go"] = golangReleases()
	ts.catalog.releases["ms-python.python"] = []types.PackageRelease{
		{PackageID: "ms-python.python", Version: "1.5.0", EngineRange: "^1.95.0", ArtifactURL: "https://cdn.test/py.vsix"},
	}
	ts.catalog.artifacts["https://cdn.test/golang.go-2.0.0.vsix"] = []byte("v2")
	ts.catalog.artifacts["https://cdn.test/golang.go-1.0.0.vsix"] = []byte("v1")

	result, err := ts.Mirror(context.Background(), MirrorRequest{
		MarketsPath: "markets.yaml",
		Extensions:  []string{"Golang.Go", "ms-python.python"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Markets)
	assert.Equal(t, 2, result.Extensions)
	assert.Equal(t, 2, result.Report.Mirrored())
	assert.Equal(t, 2, result.Report.Skipped())

	// Each extension is looked up once, not once per market.
	assert.Equal(t, 1, ts.catalog.listCalls["golang.go"])
	assert.Equal(t, 1, ts.catalog.listCalls["ms-python.python"])

	// Newest compatible release per market engine.
	stableHas, _ := ts.store("/markets/stable").Has("golang.go", "2.0.0")
	legacyHas, _ := ts.store("/markets/legacy").Has("golang.go", "1.0.0")
	assert.True(t, stableHas)
	assert.True(t, legacyHas)

	stableIndex := ts.index.indexes["/markets/stable"]
	require.Contains(t, stableIndex, "golang.go")
	entry := stableIndex["golang.go"]
	assert.Equal(t, "2.0.0", entry.Version)
	assert.Equal(t, "^1.90.0", entry.EngineRange)
	assert.Equal(t, "golang", entry.Publisher)
	assert.Equal(t, "go", entry.Name)
	assert.Equal(t, "golang.go-2.0.0.vsix", entry.VsixPath)
	// Enabled state observed in the reference editor at mirror time.
	assert.False(t, entry.SourceEnabled)
	assert.NotContains(t, stableIndex, "ms-python.python")

	for _, record := range result.Report.Records {
		if record.ExtensionID == "ms-python.python" {
			assert.Equal(t, types.SkipIncompatible, record.Reason)
		} else {
			assert.Empty(t, record.Reason)
		}
	}
}

func TestMirrorSkipReasons(t *testing.T) {
	ts := newTestService(twoMarketSpec(), nil)
	ts.catalog.listErrs["pub.gone"] = errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("extension not found in gallery")
	ts.catalog.listErrs["pub.flaky"] = errors.New("gallery query failed after retries")
	ts.catalog.releases["pub.nourl"] = []types.PackageRelease{
		{PackageID: "pub.nourl", Version: "1.0.0", EngineRange: "*"},
	}
	ts.catalog.releases["pub.empty"] = nil

	result, err := ts.Mirror(context.Background(), MirrorRequest{
		MarketsPath: "markets.yaml",
		Extensions:  []string{"pub.gone", "pub.flaky", "pub.nourl", "pub.empty"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Report.Mirrored())
	assert.Equal(t, 8, result.Report.Skipped())

	reasons := map[string]types.SkipReason{}
	for _, record := range result.Report.Records {
		reasons[record.ExtensionID] = record.Reason
	}
	assert.Equal(t, types.SkipNotInCatalog, reasons["pub.gone"])
	assert.Equal(t, types.SkipTransient, reasons["pub.flaky"])
	assert.Equal(t, types.SkipNoArtifactURL, reasons["pub.nourl"])
	assert.Equal(t, types.SkipNoReleases, reasons["pub.empty"])
}

func TestMirrorDownloadFailureIsTransient(t *testing.T) {
	ts := newTestService(twoMarketSpec(), nil)
	ts.catalog.releases["pub.ext"] = []types.PackageRelease{
		{PackageID: "pub.ext", Version: "1.0.0", EngineRange: "*", ArtifactURL: "https://cdn.test/gone.vsix"},
	}

	result, err := ts.Mirror(context.Background(), MirrorRequest{
		MarketsPath: "markets.yaml",
		Extensions:  []string{"pub.ext"},
	})
	require.NoError(t, err)
	require.Len(t, result.Report.Records, 2)
	for _, record := range result.Report.Records {
		assert.Equal(t, types.SkipTransient, record.Reason)
		assert.Equal(t, "1.0.0", record.Version)
	}
}

func TestMirrorReusesCachedArtifacts(t *testing.T) {
	ts := newTestService(twoMarketSpec(), nil)
	ts.catalog.releases["golang.go"] = golangReleases()
	ts.catalog.artifacts["https://cdn.test/golang.go-1.0.0.vsix"] = []byte("v1")
	ts.store("/markets/stable").files["golang.go-2.0.0.vsix"] = []byte("v2")

	result, err := ts.Mirror(context.Background(), MirrorRequest{
		MarketsPath: "markets.yaml",
		Extensions:  []string{"golang.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Report.Mirrored())

	// The cached stable artifact is not downloaded again.
	assert.Equal(t, []string{"https://cdn.test/golang.go-1.0.0.vsix"}, ts.catalog.downloads)
	for _, record := range result.Report.Records {
		if record.Market == "stable" {
			assert.True(t, record.Cached)
		} else {
			assert.False(t, record.Cached)
		}
	}
	// A cached artifact still lands in the gallery index.
	assert.Contains(t, ts.index.indexes["/markets/stable"], "golang.go")
}

func TestMirrorRemovesStaleArtifacts(t *testing.T) {
	ts := newTestService(twoMarketSpec(), nil)
	ts.catalog.releases["golang.go"] = golangReleases()
	ts.catalog.artifacts["https://cdn.test/golang.go-2.0.0.vsix"] = []byte("v2")
	ts.catalog.artifacts["https://cdn.test/golang.go-1.0.0.vsix"] = []byte("v1")
	stable := ts.store("/markets/stable")
	stable.files["golang.go-0.9.0.vsix"] = []byte("old")
	stable.files["pub.dropped-1.0.0.vsix"] = []byte("dropped")

	_, err := ts.Mirror(context.Background(), MirrorRequest{
		MarketsPath: "markets.yaml",
		Extensions:  []string{"golang.go"},
	})
	require.NoError(t, err)

	has, _ := stable.Has("golang.go", "0.9.0")
	assert.False(t, has)
	has, _ = stable.Has("pub.dropped", "1.0.0")
	assert.False(t, has)
	has, _ = stable.Has("golang.go", "2.0.0")
	assert.True(t, has)
}

func TestMirrorEditorUnavailable(t *testing.T) {
	cliErr := errors.New("exec: \"code\": executable file not found in $PATH")

	t.Run("pinned list keeps the run going", func(t *testing.T) {
		ts := newTestService(twoMarketSpec(), nil)
		ts.Service.NewInstalled = func(string, string) ports.InstalledStatePort {
			return fakeInstalled{err: cliErr}
		}
		ts.catalog.releases["golang.go"] = golangReleases()
		ts.catalog.artifacts["https://cdn.test/golang.go-2.0.0.vsix"] = []byte("v2")
		ts.catalog.artifacts["https://cdn.test/golang.go-1.0.0.vsix"] = []byte("v1")

		result, err := ts.Mirror(context.Background(), MirrorRequest{
			MarketsPath: "markets.yaml",
			Extensions:  []string{"golang.go"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Report.Mirrored())
		// Without an observable editor state the extension counts as enabled.
		assert.True(t, ts.index.indexes["/markets/stable"]["golang.go"].SourceEnabled)
	})

	t.Run("no pinned list aborts", func(t *testing.T) {
		ts := newTestService(twoMarketSpec(), nil)
		ts.Service.NewInstalled = func(string, string) ports.InstalledStatePort {
			return fakeInstalled{err: cliErr}
		}
		_, err := ts.Mirror(context.Background(), MirrorRequest{MarketsPath: "markets.yaml"})
		assert.ErrorIs(t, err, cliErr)
	})
}

func TestMirrorNoExtensions(t *testing.T) {
	ts := newTestService(twoMarketSpec(), map[string]types.InstalledExtension{})
	_, err := ts.Mirror(context.Background(), MirrorRequest{MarketsPath: "markets.yaml"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestMirrorRequiresMarketsPath(t *testing.T) {
	ts := newTestService(twoMarketSpec(), nil)
	_, err := ts.Mirror(context.Background(), MirrorRequest{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestMirrorPinnedListFallsBackToSpec(t *testing.T) {
	spec := twoMarketSpec()
	spec.Extensions = []string{"golang.go"}
	ts := newTestService(spec, nil)
	ts.catalog.releases["golang.go"] = golangReleases()
	ts.catalog.artifacts["https://cdn.test/golang.go-2.0.0.vsix"] = []byte("v2")
	ts.catalog.artifacts["https://cdn.test/golang.go-1.0.0.vsix"] = []byte("v1")

	result, err := ts.Mirror(context.Background(), MirrorRequest{MarketsPath: "markets.yaml"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Extensions)
	assert.Equal(t, 2, result.Report.Mirrored())
}
