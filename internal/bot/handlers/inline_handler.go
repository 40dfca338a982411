package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// NewInlineHandler returns a handler for inline queries. Every query draws a
// new result, so answers are personal and never cached.
func NewInlineHandler(deps HandlerDeps) bot.HandlerFunc {
	return inlineHandler{deps}.Handle
}

// inlineCacheTime is the smallest cache the API honours: a zero cache_time
// is omitted from the request and the server applies its 300s default.
const inlineCacheTime = 1

type inlineHandler struct {
	deps HandlerDeps
}

func (h inlineHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "inline")

	q := update.InlineQuery
	if q == nil || q.From == nil {
		log.WarnContext(ctx, "Inline handler received update without query or sender", "update_id", update.ID)
		return
	}

	res, err := roll(ctx, h.deps, log, *q.From)
	if err != nil {
		log.ErrorContext(ctx, "Inline query failed", "error", err, "user_id", q.From.ID)
		return
	}

	msgs := h.deps.Config.Messages
	results := []models.InlineQueryResult{
		&models.InlineQueryResultArticle{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf(msgs.InlineTitleFmt, res.Value),
			Description: msgs.InlineDescription,
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: res.Text,
			},
			ReplyMarkup: singleButtonKeyboard(models.InlineKeyboardButton{
				Text:                         msgs.NewResultButton,
				SwitchInlineQueryCurrentChat: inlineSwitchQueryValue,
			}),
		},
	}

	_, err = b.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: q.ID,
		Results:       results,
		IsPersonal:    true,
		CacheTime:     inlineCacheTime,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer inline query", "error", err, "user_id", q.From.ID)
	}
}
