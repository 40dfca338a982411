// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly stops updates from users outside the admin allow-list. Messages
// get the unauthorized reply; callback queries get it as an alert.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "AdminOnly")

			switch {
			case update.Message != nil && update.Message.From != nil:
				userID := update.Message.From.ID
				if deps.Admin.IsAdmin(userID) {
					next(ctx, b, update)
					return
				}
				chatID := update.Message.Chat.ID
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
				sendText(ctx, b, log, chatID, deps.Config.Messages.Unauthorized, nil)

			case update.CallbackQuery != nil:
				userID := update.CallbackQuery.From.ID
				if deps.Admin.IsAdmin(userID) {
					next(ctx, b, update)
					return
				}
				log.WarnContext(ctx, "Unauthorized callback attempt", "user_id", userID, "data", update.CallbackQuery.Data)
				answerCallback(ctx, b, log, update.CallbackQuery.ID, deps.Config.Messages.Unauthorized, true)

			default:
				log.DebugContext(ctx, "Ignoring update without sender", "update_id", update.ID)
			}
		}
	}
}

// RateLimited drops draws from users over their per-user budget. Messages get
// a short reply, callbacks an alert; inline queries are left unanswered.
func RateLimited(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if deps.Limiter == nil {
				next(ctx, b, update)
				return
			}
			log := deps.Logger.With("middleware", "RateLimited")

			switch {
			case update.Message != nil && update.Message.From != nil:
				if deps.Limiter.Allow(update.Message.From.ID) {
					next(ctx, b, update)
					return
				}
				log.InfoContext(ctx, "Rate limited message", "user_id", update.Message.From.ID)
				sendText(ctx, b, log, update.Message.Chat.ID, deps.Config.Messages.RateLimited, nil)

			case update.CallbackQuery != nil:
				if deps.Limiter.Allow(update.CallbackQuery.From.ID) {
					next(ctx, b, update)
					return
				}
				log.InfoContext(ctx, "Rate limited callback", "user_id", update.CallbackQuery.From.ID)
				answerCallback(ctx, b, log, update.CallbackQuery.ID, deps.Config.Messages.RateLimited, true)

			case update.InlineQuery != nil && update.InlineQuery.From != nil:
				if deps.Limiter.Allow(update.InlineQuery.From.ID) {
					next(ctx, b, update)
					return
				}
				log.InfoContext(ctx, "Rate limited inline query", "user_id", update.InlineQuery.From.ID)

			default:
				next(ctx, b, update)
			}
		}
	}
}
