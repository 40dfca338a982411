package tasks

import (
	"context"

	"github.com/edgard/percentbot/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task. Returned errors
// are logged by the scheduler.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the task table keyed by the names used in the
// scheduler.tasks config section. joke_refresh and rate_limit_cleanup are
// only registered when their dependency is present.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)
	tasks[config.TaskAdminSessionCleanup] = newAdminSessionCleanupTask(deps)
	if deps.Limiter != nil {
		tasks[config.TaskRateLimitCleanup] = newRateLimitCleanupTask(deps)
	}
	if deps.GeminiClient != nil {
		tasks[config.TaskJokeRefresh] = newJokeRefreshTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
