package app

import "vsix-sync/internal/types"

type MirrorRequest struct {
	MarketsPath     string
	Extensions      []string
	EditorCLI       string
	DisabledFile    string
	GalleryEndpoint string
	Workers         int
	TimeoutSec      int
	Retries         int
	RetryDelayMs    int
}

type MirrorResult struct {
	Markets    int
	Extensions int
	Report     types.MirrorReport
}

type PlanRequest struct {
	MarketsPath  string
	Market       string
	EditorCLI    string
	DisabledFile string
	Policy       types.SyncPolicy
}

type PlanResult struct {
	Market types.Market
	// EditorCLI is the resolved CLI name (request, spec default, or
	// "code"), so Apply executes against the same editor it planned for.
	EditorCLI string
	Plan      types.ActionPlan
}

type ApplyRequest struct {
	PlanRequest
	DryRun bool
}

type ApplyResult struct {
	Market types.Market
	Plan   types.ActionPlan
	DryRun bool
	Report types.ApplyReport
}

type InspectRequest struct {
	MarketsPath string
	Market      string
}

type InspectEntry struct {
	ID            string
	Version       string
	SourceEnabled bool
	HasArtifact   bool
}

type InspectResult struct {
	Market  types.Market
	Entries []InspectEntry
}

type ServeRequest struct {
	MarketsPath string
	Market      string
	Addr        string
}
