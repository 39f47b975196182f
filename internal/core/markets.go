package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

// ValidateMarketsSpec checks a loaded markets spec before any network or
// editor work starts: every market needs a unique name, a structured
// engine version, and a directory, and pinned extension ids must look like
// publisher.name identifiers.
func ValidateMarketsSpec(ctx context.Context, spec types.MarketsSpec) error {
	assert.NotEmpty(ctx, spec.APIVersion, "api_version must be set")
	if len(spec.Markets) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("markets list must not be empty")
	}
	cache := newVersionCache()
	names := map[string]struct{}{}
	for _, market := range spec.Markets {
		name := strings.ToLower(strings.TrimSpace(market.Name))
		if name == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("market name must be set")
		}
		if _, ok := names[name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("duplicate market name: " + name)
		}
		names[name] = struct{}{}
		if cache.version(market.Engine) == nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("market %s: engine is not a structured version: %s", name, market.Engine))
		}
		if strings.TrimSpace(market.Directory) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("market " + name + ": directory must be set")
		}
	}
	for _, id := range spec.Extensions {
		publisher, extName := shared.SplitExtensionID(id)
		if publisher == "" || extName == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("extension id must be publisher.name: " + id)
		}
	}
	return nil
}

// FindMarket returns the named market from the spec, matching
// case-insensitively.
func FindMarket(spec types.MarketsSpec, name string) (types.Market, error) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	for _, market := range spec.Markets {
		if strings.ToLower(strings.TrimSpace(market.Name)) == wanted {
			return market, nil
		}
	}
	return types.Market{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("market not found in spec: " + name)
}
