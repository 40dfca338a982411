// Package logger provides structured logging for percentbot.
// It uses Go's slog package with configurable levels and formats.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewLogger creates a new slog Logger writing to stdout with the specified
// level and format. If jsonOutput is true, logs are formatted as JSON,
// otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	return New(os.Stdout, levelStr, jsonOutput)
}

// New is NewLogger with an explicit destination.
func New(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog.Level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware creates a logging middleware for the Telegram bot.
// It logs every incoming update with its type, origin and handling duration.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			logEntry := log.With("update_id", update.ID).With(UpdateAttrs(update)...)
			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// UpdateAttrs extracts loggable attributes from an update.
func UpdateAttrs(update *models.Update) []any {
	switch {
	case update.Message != nil:
		attrs := []any{
			"update_type", "message",
			"message_id", update.Message.ID,
			"chat_id", update.Message.Chat.ID,
			"text_preview", truncateString(update.Message.Text, 50),
		}
		if update.Message.From != nil {
			attrs = append(attrs, "user_id", update.Message.From.ID)
		}
		return attrs

	case update.CallbackQuery != nil:
		attrs := []any{
			"update_type", "callback_query",
			"callback_query_id", update.CallbackQuery.ID,
			"user_id", update.CallbackQuery.From.ID,
			"data", update.CallbackQuery.Data,
		}
		switch {
		case update.CallbackQuery.Message.Message != nil:
			attrs = append(attrs, "chat_id", update.CallbackQuery.Message.Message.Chat.ID, "message_accessible", true)
		case update.CallbackQuery.Message.InaccessibleMessage != nil:
			attrs = append(attrs, "chat_id", update.CallbackQuery.Message.InaccessibleMessage.Chat.ID, "message_accessible", false)
		}
		return attrs

	case update.InlineQuery != nil:
		attrs := []any{
			"update_type", "inline_query",
			"inline_query_id", update.InlineQuery.ID,
			"query_preview", truncateString(update.InlineQuery.Query, 50),
		}
		if update.InlineQuery.From != nil {
			attrs = append(attrs, "user_id", update.InlineQuery.From.ID)
		}
		return attrs

	default:
		return []any{"update_type", "other"}
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
