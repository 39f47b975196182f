package core

import (
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"vsix-sync/internal/types"
)

// NotFoundReason distinguishes "the package has no releases at all" from
// "releases exist but none is compatible with the engine".
type NotFoundReason string

const (
	ReasonNoReleases   NotFoundReason = "no-releases"
	ReasonIncompatible NotFoundReason = "incompatible"
)

// ReleaseSelection is the typed result of SelectRelease. Not finding a
// release is an expected, frequent outcome and therefore never an error.
type ReleaseSelection struct {
	Release types.PackageRelease
	Found   bool
	Reason  NotFoundReason
}

// SelectRelease picks the release to mirror for one engine version: the
// newest release, by version ordering, whose declared engine range accepts
// the engine. Releases with malformed ranges are skipped. The result is
// deterministic for a fixed release list and engine version; ties between
// equal versions are broken by the raw version string.
func SelectRelease(releases []types.PackageRelease, engineVersion string) (ReleaseSelection, error) {
	cache := newVersionCache()
	engine := cache.version(engineVersion)
	if engine == nil {
		return ReleaseSelection{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("engine version is not a structured version: " + engineVersion)
	}
	if len(releases) == 0 {
		return ReleaseSelection{Reason: ReasonNoReleases}, nil
	}

	sorted := append([]types.PackageRelease(nil), releases...)
	sort.SliceStable(sorted, func(i int, j int) bool {
		switch cache.compare(sorted[i].Version, sorted[j].Version) {
		case OrderGreater:
			return true
		case OrderLess:
			return false
		default:
			return sorted[i].Version < sorted[j].Version
		}
	})

	for _, release := range sorted {
		if strings.TrimSpace(release.EngineRange) == "" {
			continue
		}
		constraint := cache.constraint(release.EngineRange)
		if constraint == nil {
			log.Warn().
				Str("package", release.PackageID).
				Str("version", release.Version).
				Str("range", release.EngineRange).
				Msg("skipping release with malformed engine range")
			continue
		}
		if constraint.Check(engine) {
			return ReleaseSelection{Release: release, Found: true}, nil
		}
	}
	return ReleaseSelection{Reason: ReasonIncompatible}, nil
}
