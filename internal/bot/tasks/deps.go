// Package tasks implements the scheduled maintenance tasks of percentbot.
package tasks

import (
	"log/slog"

	"github.com/edgard/percentbot/internal/admin"
	"github.com/edgard/percentbot/internal/config"
	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/gemini"
	"github.com/edgard/percentbot/internal/ratelimit"
)

// TaskDeps contains all dependencies required by scheduled tasks.
// GeminiClient is nil when no API key is configured; Limiter is nil when
// rate limiting is off.
type TaskDeps struct {
	Logger       *slog.Logger
	Store        database.Store
	Admin        *admin.Flow
	Limiter      *ratelimit.Limiter
	GeminiClient gemini.Client
	Config       *config.Config
}
