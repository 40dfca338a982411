package handlers

import (
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/percentbot/internal/admin"
	"github.com/edgard/percentbot/internal/config"
	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/percent"
	"github.com/edgard/percentbot/internal/ratelimit"
	"github.com/edgard/percentbot/internal/stats"
)

// HandlerDeps provides dependencies for Telegram command handlers.
// BotInfo is filled from getMe after the client is created; handlers built
// before that treat it as unknown.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Generator *percent.Generator
	Stats     *stats.Aggregator
	Admin     *admin.Flow
	Limiter   *ratelimit.Limiter
	BotInfo   *models.User
}
