package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/percent"
)

// roll draws a result for user and records it in the rating log. A failed
// insert is logged; the result is still returned.
func roll(ctx context.Context, deps HandlerDeps, log *slog.Logger, user models.User) (percent.Result, error) {
	res, err := deps.Generator.Generate(ctx)
	if err != nil {
		return percent.Result{}, fmt.Errorf("failed to generate result: %w", err)
	}

	name := DisplayName(user)
	rating := &database.Rating{
		UserID:      user.ID,
		DisplayName: sql.NullString{String: name, Valid: name != ""},
		Value:       res.Value,
	}
	if err := deps.Store.AppendRating(ctx, rating); err != nil {
		log.ErrorContext(ctx, "Failed to record rating", "error", err, "user_id", user.ID, "value", res.Value)
	} else {
		log.DebugContext(ctx, "Recorded rating", "rating_id", rating.ID, "user_id", user.ID, "value", res.Value)
	}

	return res, nil
}

func tryAgainKeyboard(deps HandlerDeps) *models.InlineKeyboardMarkup {
	return singleButtonKeyboard(models.InlineKeyboardButton{
		Text:         deps.Config.Messages.TryAgainButton,
		CallbackData: CallbackPercentAgain,
	})
}

// NewPercentHandler returns a handler for the percent command.
func NewPercentHandler(deps HandlerDeps) bot.HandlerFunc {
	return percentHandler{deps}.Handle
}

type percentHandler struct {
	deps HandlerDeps
}

func (h percentHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "percent")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Percent handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	res, err := roll(ctx, h.deps, log, *update.Message.From)
	if err != nil {
		log.ErrorContext(ctx, "Percent command failed", "error", err, "chat_id", chatID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError, nil)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            res.Text,
		ReplyMarkup:     tryAgainKeyboard(h.deps),
		ReplyParameters: &models.ReplyParameters{MessageID: update.Message.ID, AllowSendingWithoutReply: true},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send result", "error", err, "chat_id", chatID)
	}
}

// NewPercentAgainHandler returns a handler for the "try again" button. It
// draws a fresh result for whoever pressed the button.
func NewPercentAgainHandler(deps HandlerDeps) bot.HandlerFunc {
	return percentAgainHandler{deps}.Handle
}

type percentAgainHandler struct {
	deps HandlerDeps
}

func (h percentAgainHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "percent_again")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	res, err := roll(ctx, h.deps, log, cq.From)
	if err != nil {
		log.ErrorContext(ctx, "Percent callback failed", "error", err, "user_id", cq.From.ID)
		answerCallback(ctx, b, log, cq.ID, h.deps.Config.Messages.GeneralError, true)
		return
	}

	chatID, ok := callbackChatID(cq)
	if !ok {
		// Inline messages have no chat; show the result as an alert instead.
		answerCallback(ctx, b, log, cq.ID, res.Text, true)
		return
	}

	answerCallback(ctx, b, log, cq.ID, "", false)
	sendText(ctx, b, log, chatID, res.Text, tryAgainKeyboard(h.deps))
}
