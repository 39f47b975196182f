package core

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"vsix-sync/internal/policies"
	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

// presence enumerates which side(s) of the reconciliation an id appears on.
type presence int

const (
	presenceMirroredOnly presence = iota
	presenceInstalledOnly
	presenceBoth
)

// decision is the per-id outcome of the policy table. Actions are split by
// pass so the plan can emit install/update before enable/disable before
// uninstall for every id.
type decision struct {
	install   *types.Action
	toggle    *types.Action
	uninstall *types.Action
}

// GeneratePlan reconciles a target editor's installed snapshot against one
// market's mirrored artifacts under the given policy. It is a pure
// function: inputs are never mutated, the same inputs always produce the
// same plan, and a malformed entry excludes only its own id (recorded as a
// warning) rather than failing the plan.
func GeneratePlan(installed map[string]types.InstalledExtension, mirrored []types.MirroredArtifact, policy types.SyncPolicy) types.ActionPlan {
	effective := policies.Effective(policy)
	cache := newVersionCache()
	plan := types.ActionPlan{}

	installedByID, mirroredByID, warnings := normalizeInputs(installed, mirrored)
	plan.Warnings = warnings

	ids := make([]string, 0, len(installedByID)+len(mirroredByID))
	seen := map[string]struct{}{}
	for id := range installedByID {
		ids = append(ids, id)
		seen[id] = struct{}{}
	}
	for id := range mirroredByID {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	decisions := make([]decision, 0, len(ids))
	for _, id := range ids {
		current, isInstalled := installedByID[id]
		artifact, isMirrored := mirroredByID[id]
		decisions = append(decisions, decide(cache, effective, presenceOf(isInstalled, isMirrored), current, artifact))
	}

	for _, d := range decisions {
		if d.install != nil {
			plan.Actions = append(plan.Actions, *d.install)
		}
	}
	for _, d := range decisions {
		if d.toggle != nil {
			plan.Actions = append(plan.Actions, *d.toggle)
		}
	}
	for _, d := range decisions {
		if d.uninstall != nil {
			plan.Actions = append(plan.Actions, *d.uninstall)
		}
	}
	return plan
}

func presenceOf(isInstalled bool, isMirrored bool) presence {
	switch {
	case isInstalled && isMirrored:
		return presenceBoth
	case isInstalled:
		return presenceInstalledOnly
	default:
		return presenceMirroredOnly
	}
}

// decide applies the policy table for one id. Cases are enumerated by
// presence first, then by version order and enabled state, so each table
// row maps to exactly one branch.
func decide(cache *versionCache, policy types.SyncPolicy, state presence, current types.InstalledExtension, artifact types.MirroredArtifact) decision {
	switch state {
	case presenceMirroredOnly:
		if !policy.InstallMissing {
			return decision{}
		}
		d := decision{install: &types.Action{
			Kind:             types.ActionInstall,
			ID:               artifact.ExtensionID,
			Version:          artifact.Version,
			ArtifactLocation: artifact.Location,
		}}
		if policy.SyncDisabled && !artifact.SourceEnabled {
			d.toggle = &types.Action{Kind: types.ActionDisable, ID: artifact.ExtensionID}
		}
		return d

	case presenceInstalledOnly:
		if !policy.SyncRemovals {
			return decision{}
		}
		return decision{uninstall: &types.Action{
			Kind: types.ActionUninstall,
			ID:   current.ID,
		}}

	default:
		d := decision{}
		order := cache.compare(artifact.Version, current.Version)
		if order == OrderGreater {
			d.install = &types.Action{
				Kind:             types.ActionUpdate,
				ID:               artifact.ExtensionID,
				Version:          artifact.Version,
				CurrentVersion:   current.Version,
				ArtifactLocation: artifact.Location,
			}
		}
		// Never downgrade: mirrored <= installed leaves the version alone.
		if policy.SyncDisabled && order != OrderLess && artifact.SourceEnabled != current.Enabled {
			kind := types.ActionDisable
			if artifact.SourceEnabled {
				kind = types.ActionEnable
			}
			d.toggle = &types.Action{Kind: kind, ID: artifact.ExtensionID}
		}
		return d
	}
}

// normalizeInputs lowercases ids, drops malformed entries, and rejects ids
// that appear more than once within one snapshot.
func normalizeInputs(installed map[string]types.InstalledExtension, mirrored []types.MirroredArtifact) (map[string]types.InstalledExtension, map[string]types.MirroredArtifact, []types.PlanWarning) {
	var warnings []types.PlanWarning
	dropped := map[string]struct{}{}

	installedByID := map[string]types.InstalledExtension{}
	for key, entry := range installed {
		id := shared.NormalizeExtensionID(entry.ID)
		if id == "" {
			id = shared.NormalizeExtensionID(key)
		}
		if id == "" || strings.TrimSpace(entry.Version) == "" {
			warnings = append(warnings, types.PlanWarning{ID: id, Reason: "malformed installed entry"})
			continue
		}
		if _, ok := installedByID[id]; ok {
			warnings = append(warnings, types.PlanWarning{ID: id, Reason: "duplicate id in installed snapshot"})
			dropped[id] = struct{}{}
			continue
		}
		entry.ID = id
		installedByID[id] = entry
	}

	mirroredByID := map[string]types.MirroredArtifact{}
	for _, artifact := range mirrored {
		id := shared.NormalizeExtensionID(artifact.ExtensionID)
		if id == "" || strings.TrimSpace(artifact.Version) == "" {
			warnings = append(warnings, types.PlanWarning{ID: id, Reason: "malformed mirrored entry"})
			continue
		}
		if _, ok := mirroredByID[id]; ok {
			warnings = append(warnings, types.PlanWarning{ID: id, Reason: "duplicate id in mirrored set"})
			dropped[id] = struct{}{}
			continue
		}
		artifact.ExtensionID = id
		mirroredByID[id] = artifact
	}

	for id := range dropped {
		delete(installedByID, id)
		delete(mirroredByID, id)
	}
	for _, warning := range warnings {
		log.Warn().Str("id", warning.ID).Str("reason", warning.Reason).
			Msg("excluding extension from plan")
	}
	return installedByID, mirroredByID, warnings
}
