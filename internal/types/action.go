package types

type ActionKind string

const (
	ActionInstall   ActionKind = "install"
	ActionUpdate    ActionKind = "update"
	ActionUninstall ActionKind = "uninstall"
	ActionEnable    ActionKind = "enable"
	ActionDisable   ActionKind = "disable"
)

// Action is one step of a reconciliation plan. Which fields are meaningful
// depends on Kind: install/update carry Version and ArtifactLocation, update
// additionally CurrentVersion; uninstall/enable/disable carry only the ID.
type Action struct {
	Kind             ActionKind
	ID               string
	Version          string
	CurrentVersion   string
	ArtifactLocation string
}

// PlanWarning records a per-extension input that was excluded from plan
// generation instead of failing the whole plan.
type PlanWarning struct {
	ID     string
	Reason string
}

// ActionPlan is an ordered action sequence. For any id that has both an
// install/update action and an enable/disable action, the install/update
// action comes first.
type ActionPlan struct {
	Actions  []Action
	Warnings []PlanWarning
}

func (p ActionPlan) Empty() bool {
	return len(p.Actions) == 0
}
