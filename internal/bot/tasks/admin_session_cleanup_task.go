package tasks

import (
	"context"
)

// newAdminSessionCleanupTask drops admin edit sessions whose TTL has passed.
func newAdminSessionCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "admin_session_cleanup")

	return func(ctx context.Context) error {
		if removed := deps.Admin.PruneExpired(); removed > 0 {
			log.InfoContext(ctx, "Pruned expired admin sessions", "removed", removed, "pending", deps.Admin.Pending())
		}
		return nil
	}
}
