package types

// SyncPolicy controls which divergences between installed and mirrored
// state produce actions. Force is shorthand for enabling the other three
// switches and is expanded before plan generation.
type SyncPolicy struct {
	InstallMissing bool
	SyncRemovals   bool
	SyncDisabled   bool
	Force          bool
}
