package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/percentbot/internal/config"
	"github.com/edgard/percentbot/internal/stats"
)

// NewStatsHandler returns a handler for the statistics command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	summary, err := h.deps.Stats.Summary(ctx, stats.DefaultWindows)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build statistics", "error", err, "chat_id", chatID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError, nil)
		return
	}

	sendText(ctx, b, log, chatID, FormatStats(h.deps.Config.Messages, summary), nil)
}

// FormatStats renders a summary. It returns the empty-state message when the
// all-time window, or the widest window given, has no ratings.
func FormatStats(msgs config.MessagesConfig, summary []stats.WindowStats) string {
	if len(summary) == 0 || totalCount(summary) == 0 {
		return msgs.StatsEmpty
	}

	var sb strings.Builder
	sb.WriteString(msgs.StatsHeader)
	for _, ws := range summary {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, msgs.StatsLineFmt, windowLabel(msgs, ws.Window), ws.Average, ws.Count)
	}
	return sb.String()
}

func totalCount(summary []stats.WindowStats) int {
	widest := 0
	for _, ws := range summary {
		if ws.Window.IsAllTime() {
			return ws.Count
		}
		if ws.Count > widest {
			widest = ws.Count
		}
	}
	return widest
}

func windowLabel(msgs config.MessagesConfig, w stats.Window) string {
	switch w.Days {
	case 0:
		return msgs.StatsAllTime
	case 7:
		return msgs.StatsWeek
	case 30:
		return msgs.StatsMonth
	case 365:
		return msgs.StatsYear
	default:
		return fmt.Sprintf("%dd", w.Days)
	}
}
