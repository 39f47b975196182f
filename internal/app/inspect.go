package app

import (
	"context"
	"sort"

	"vsix-sync/internal/core"
)

// Inspect summarizes one market's mirror: which extensions are cached at
// which version, and whether the artifact file actually exists.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	spec, err := s.loadMarkets(ctx, req.MarketsPath)
	if err != nil {
		return InspectResult{}, err
	}
	market, err := core.FindMarket(spec, req.Market)
	if err != nil {
		return InspectResult{}, err
	}
	index, err := s.GalleryIndex.Read(market.Directory)
	if err != nil {
		return InspectResult{}, err
	}
	store := s.NewStore(market.Directory)

	result := InspectResult{Market: market}
	for _, entry := range index {
		has, err := store.Has(entry.ID, entry.Version)
		if err != nil {
			return InspectResult{}, err
		}
		result.Entries = append(result.Entries, InspectEntry{
			ID:            entry.ID,
			Version:       entry.Version,
			SourceEnabled: entry.SourceEnabled,
			HasArtifact:   has,
		})
	}
	sort.Slice(result.Entries, func(i int, j int) bool {
		return result.Entries[i].ID < result.Entries[j].ID
	})
	return result, nil
}
