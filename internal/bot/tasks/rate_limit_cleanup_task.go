package tasks

import (
	"context"
)

// newRateLimitCleanupTask forgets the buckets of users idle for longer than
// rate_limit.idle_ttl.
func newRateLimitCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "rate_limit_cleanup")

	return func(ctx context.Context) error {
		if removed := deps.Limiter.Prune(deps.Config.RateLimit.IdleTTL); removed > 0 {
			log.InfoContext(ctx, "Pruned idle rate limit buckets", "removed", removed, "tracked", deps.Limiter.Tracked())
		}
		return nil
	}
}
