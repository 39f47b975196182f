package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"vsix-sync/internal/adapters"
	"vsix-sync/internal/core"
	"vsix-sync/internal/ports"
	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

const defaultMirrorWorkers = 4

// marketMirror accumulates one market's mirror outcome while workers run.
type marketMirror struct {
	market   types.Market
	store    ports.ArtifactStorePort
	expected map[string]struct{}
	entries  types.GalleryIndex
}

// Mirror selects and downloads, for every extension and every market, the
// newest release compatible with the market's engine, then removes VSIX
// files no market wants anymore. Per-extension failures become skip
// records; only setup problems (bad spec, unreachable reference editor
// with no pinned extension list) abort the run.
func (s Service) Mirror(ctx context.Context, req MirrorRequest) (MirrorResult, error) {
	started := s.Clock()
	spec, err := s.loadMarkets(ctx, req.MarketsPath)
	if err != nil {
		return MirrorResult{}, err
	}
	editorCLI := firstNonEmpty(req.EditorCLI, spec.Defaults.EditorCLI)
	disabledFile := firstNonEmpty(req.DisabledFile, spec.Defaults.DisabledFile)

	pinned := req.Extensions
	if len(pinned) == 0 {
		pinned = spec.Extensions
	}
	installed, err := s.NewInstalled(editorCLI, disabledFile).List(ctx)
	if err != nil {
		if len(pinned) == 0 {
			return MirrorResult{}, err
		}
		log.Warn().Err(err).
			Msg("reference editor unavailable, assuming pinned extensions are enabled")
		installed = map[string]types.InstalledExtension{}
	}
	ids := extensionIDs(pinned, installed)
	if len(ids) == 0 {
		return MirrorResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no extensions to mirror")
	}

	catalog := s.NewCatalog(req.GalleryEndpoint, req.TimeoutSec, req.Retries, req.RetryDelayMs)
	markets := make([]*marketMirror, 0, len(spec.Markets))
	for _, market := range spec.Markets {
		markets = append(markets, &marketMirror{
			market:   market,
			store:    s.NewStore(market.Directory),
			expected: map[string]struct{}{},
			entries:  types.GalleryIndex{},
		})
	}

	log.Info().Int("extensions", len(ids)).Int("markets", len(markets)).
		Msg("mirroring extensions")
	report := s.mirrorAll(ctx, catalog, markets, ids, installed, req.Workers)

	for _, market := range markets {
		if err := s.finishMarket(market); err != nil {
			return MirrorResult{}, err
		}
	}
	log.Info().
		Int("mirrored", report.Mirrored()).
		Int("skipped", report.Skipped()).
		Dur("elapsed", s.Clock().Sub(started)).
		Msg("mirror complete")
	return MirrorResult{
		Markets:    len(markets),
		Extensions: len(ids),
		Report:     report,
	}, nil
}

func (s Service) mirrorAll(ctx context.Context, catalog ports.CatalogPort, markets []*marketMirror, ids []string, installed map[string]types.InstalledExtension, workers int) types.MirrorReport {
	if workers <= 0 {
		workers = defaultMirrorWorkers
	}
	if len(ids) < workers {
		workers = len(ids)
	}
	tasks := make(chan string)
	results := make(chan []types.MirrorRecord, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range tasks {
				results <- s.mirrorOne(ctx, catalog, markets, id, installed, &mu)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	for _, id := range ids {
		tasks <- id
	}
	close(tasks)

	report := types.MirrorReport{}
	for records := range results {
		report.Records = append(report.Records, records...)
	}
	sort.Slice(report.Records, func(i int, j int) bool {
		if report.Records[i].ExtensionID != report.Records[j].ExtensionID {
			return report.Records[i].ExtensionID < report.Records[j].ExtensionID
		}
		return report.Records[i].Market < report.Records[j].Market
	})
	return report
}

// mirrorOne handles one extension across every market. The mutex guards
// the shared per-market accumulators; downloads happen outside it.
func (s Service) mirrorOne(ctx context.Context, catalog ports.CatalogPort, markets []*marketMirror, id string, installed map[string]types.InstalledExtension, mu *sync.Mutex) []types.MirrorRecord {
	releases, err := catalog.ListReleases(ctx, id)
	if err != nil {
		reason := types.SkipTransient
		if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
			reason = types.SkipNotInCatalog
		}
		log.Warn().Str("extension", id).Err(err).Msg("catalog lookup failed")
		records := make([]types.MirrorRecord, 0, len(markets))
		for _, market := range markets {
			records = append(records, types.MirrorRecord{
				ExtensionID: id,
				Market:      market.market.Name,
				Reason:      reason,
				Detail:      err.Error(),
			})
		}
		return records
	}

	sourceEnabled := true
	if current, ok := installed[id]; ok {
		sourceEnabled = current.Enabled
	}

	var records []types.MirrorRecord
	for _, market := range markets {
		records = append(records, s.mirrorIntoMarket(ctx, catalog, market, id, releases, sourceEnabled, mu))
	}
	return records
}

func (s Service) mirrorIntoMarket(ctx context.Context, catalog ports.CatalogPort, market *marketMirror, id string, releases []types.PackageRelease, sourceEnabled bool, mu *sync.Mutex) types.MirrorRecord {
	record := types.MirrorRecord{ExtensionID: id, Market: market.market.Name}

	selection, err := core.SelectRelease(releases, market.market.Engine)
	if err != nil {
		record.Reason = types.SkipTransient
		record.Detail = err.Error()
		return record
	}
	if !selection.Found {
		if selection.Reason == core.ReasonNoReleases {
			record.Reason = types.SkipNoReleases
		} else {
			record.Reason = types.SkipIncompatible
			record.Detail = "no release accepts engine " + market.market.Engine
		}
		log.Warn().Str("extension", id).Str("market", market.market.Name).
			Str("reason", string(record.Reason)).Msg("skipping extension")
		return record
	}
	release := selection.Release
	record.Version = release.Version
	if release.ArtifactURL == "" {
		record.Reason = types.SkipNoArtifactURL
		return record
	}

	has, err := market.store.Has(id, release.Version)
	if err != nil {
		record.Reason = types.SkipTransient
		record.Detail = err.Error()
		return record
	}
	if has {
		record.Cached = true
	} else {
		data, err := catalog.Download(ctx, release.ArtifactURL)
		if err != nil {
			record.Reason = types.SkipTransient
			record.Detail = err.Error()
			log.Warn().Str("extension", id).Str("market", market.market.Name).
				Err(err).Msg("artifact download failed")
			return record
		}
		_, putErr := market.store.Put(id, release.Version, data)
		closeErr := data.Close()
		if putErr == nil {
			putErr = closeErr
		}
		if putErr != nil {
			record.Reason = types.SkipTransient
			record.Detail = putErr.Error()
			return record
		}
		log.Info().Str("extension", id).Str("version", release.Version).
			Str("market", market.market.Name).Msg("mirrored extension")
	}

	publisher, name := shared.SplitExtensionID(id)
	fileName := adapters.VsixFileName(id, release.Version)
	mu.Lock()
	market.expected[fileName] = struct{}{}
	market.entries[id] = types.GalleryEntry{
		ID:            id,
		Publisher:     publisher,
		Name:          name,
		Version:       release.Version,
		EngineRange:   release.EngineRange,
		SourceEnabled: sourceEnabled,
		VsixPath:      fileName,
	}
	mu.Unlock()
	return record
}

// finishMarket writes the rebuilt gallery index and removes VSIX files no
// longer wanted by the market.
func (s Service) finishMarket(market *marketMirror) error {
	if err := s.GalleryIndex.Write(market.market.Directory, market.entries); err != nil {
		return err
	}
	stale, err := market.store.ListUnexpected(market.expected)
	if err != nil {
		return err
	}
	var removeErr error
	for _, location := range stale {
		log.Info().Str("market", market.market.Name).Str("path", location).
			Msg("removing stale artifact")
		if err := market.store.Remove(location); err != nil {
			removeErr = errors.Join(removeErr, err)
		}
	}
	return removeErr
}

func extensionIDs(pinned []string, installed map[string]types.InstalledExtension) []string {
	seen := map[string]struct{}{}
	var ids []string
	if len(pinned) > 0 {
		for _, id := range pinned {
			normalized := shared.NormalizeExtensionID(id)
			if normalized == "" {
				continue
			}
			if _, ok := seen[normalized]; !ok {
				seen[normalized] = struct{}{}
				ids = append(ids, normalized)
			}
		}
	} else {
		for id := range installed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
