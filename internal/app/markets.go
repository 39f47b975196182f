package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"vsix-sync/internal/core"
	"vsix-sync/internal/types"
)

func (s Service) loadMarkets(ctx context.Context, path string) (types.MarketsSpec, error) {
	if strings.TrimSpace(path) == "" {
		return types.MarketsSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("markets spec path is required")
	}
	spec, err := s.Markets.Load(path)
	if err != nil {
		return types.MarketsSpec{}, err
	}
	if err := core.ValidateMarketsSpec(ctx, spec); err != nil {
		return types.MarketsSpec{}, err
	}
	return spec, nil
}

// mirroredArtifacts builds the mirrored-state snapshot for one market from
// its gallery index, dropping entries whose VSIX is missing on disk.
func (s Service) mirroredArtifacts(market types.Market) ([]types.MirroredArtifact, error) {
	index, err := s.GalleryIndex.Read(market.Directory)
	if err != nil {
		return nil, err
	}
	store := s.NewStore(market.Directory)
	var artifacts []types.MirroredArtifact
	for _, entry := range index {
		has, err := store.Has(entry.ID, entry.Version)
		if err != nil {
			return nil, err
		}
		if !has {
			log.Warn().Str("id", entry.ID).Str("version", entry.Version).
				Str("market", market.Name).
				Msg("gallery index entry has no artifact on disk, ignoring")
			continue
		}
		artifacts = append(artifacts, types.MirroredArtifact{
			ExtensionID:   entry.ID,
			Version:       entry.Version,
			Location:      store.Location(entry.ID, entry.Version),
			SourceEnabled: entry.SourceEnabled,
		})
	}
	return artifacts, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
