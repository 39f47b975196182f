package ports

import (
	"context"

	"vsix-sync/internal/types"
)

// ExecutorPort applies one plan action against the target editor. The
// caller is responsible for order: install/update before enable/disable
// for the same id. A failed action must not prevent applying actions for
// other ids.
type ExecutorPort interface {
	Apply(ctx context.Context, action types.Action) error
}
