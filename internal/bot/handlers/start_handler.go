package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets the user and offers a button that opens inline mode
// in the current chat.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	keyboard := singleButtonKeyboard(models.InlineKeyboardButton{
		Text:                         h.deps.Config.Messages.NewResultButton,
		SwitchInlineQueryCurrentChat: inlineSwitchQueryValue,
	})
	sendText(ctx, b, log, update.Message.Chat.ID, withBotName(h.deps.Config.Messages.Welcome, h.deps.BotInfo), keyboard)
}
