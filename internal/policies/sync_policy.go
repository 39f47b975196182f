package policies

import "vsix-sync/internal/types"

// Effective expands the force shorthand into the three concrete switches.
// Plan generation only ever consults the expanded form, so force never
// behaves as an independent fourth branch.
func Effective(policy types.SyncPolicy) types.SyncPolicy {
	if !policy.Force {
		return policy
	}
	return types.SyncPolicy{
		InstallMissing: true,
		SyncRemovals:   true,
		SyncDisabled:   true,
	}
}

// Describe renders the expanded policy for log and report output.
func Describe(policy types.SyncPolicy) string {
	effective := Effective(policy)
	out := ""
	if effective.InstallMissing {
		out += "+install-missing"
	}
	if effective.SyncRemovals {
		out += "+sync-removals"
	}
	if effective.SyncDisabled {
		out += "+sync-disabled"
	}
	if out == "" {
		return "updates-only"
	}
	return "updates-only" + out
}
