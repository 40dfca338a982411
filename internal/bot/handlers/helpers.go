package handlers

import (
	"context"
	"log/slog"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const botNamePlaceholder = "@botname"

// DisplayName returns the name stored with a rating: first and last name,
// falling back to @username.
func DisplayName(u models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return ""
}

// withBotName substitutes the @botname placeholder when the bot username is
// known.
func withBotName(text string, botInfo *models.User) string {
	if botInfo == nil || botInfo.Username == "" {
		return text
	}
	return strings.ReplaceAll(text, botNamePlaceholder, "@"+botInfo.Username)
}

// callbackChatID returns the chat a callback button was pressed in.
func callbackChatID(cq *models.CallbackQuery) (int64, bool) {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID, true
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID, true
	default:
		return 0, false
	}
}

// isCommand reports whether msg starts with a bot command, including
// unregistered ones and /cmd@botname forms.
func isCommand(msg *models.Message) bool {
	for _, e := range msg.Entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return true
		}
	}
	return false
}

func singleButtonKeyboard(button models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{button}},
	}
}

func sendText(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	params := &tgbot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

func answerCallback(ctx context.Context, b *tgbot.Bot, log *slog.Logger, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "callback_id", callbackID)
	}
}
