package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask compacts and optimizes the SQLite database.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		startTime := time.Now()

		count, err := deps.Store.CountRatings(ctx)
		if err != nil {
			log.WarnContext(ctx, "Failed to count ratings before maintenance", "error", err)
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed", "ratings", count, "duration", time.Since(startTime))
		return nil
	}
}
