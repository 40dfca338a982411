package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/percentbot/internal/admin"
	"github.com/edgard/percentbot/internal/percent"
)

// NewAdminPanelHandler returns a handler for the admin command. It shows the
// panel keyboard and does not change any session state.
func NewAdminPanelHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminPanelHandler{deps}.Handle
}

type adminPanelHandler struct {
	deps HandlerDeps
}

func (h adminPanelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_panel")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	if err := h.deps.Admin.OpenPanel(update.Message.From.ID); err != nil {
		sendText(ctx, b, log, chatID, msgs.Unauthorized, nil)
		return
	}

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: msgs.AdminEditButton, CallbackData: CallbackAdminEditText}},
			{{Text: msgs.AdminShowButton, CallbackData: CallbackAdminShowText}},
		},
	}
	sendText(ctx, b, log, chatID, msgs.AdminPanel, keyboard)
}

// NewAdminCallbackHandler returns a handler for the admin panel buttons.
func NewAdminCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminCallbackHandler{deps}.Handle
}

type adminCallbackHandler struct {
	deps HandlerDeps
}

func (h adminCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_callback")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	msgs := h.deps.Config.Messages

	chatID, ok := callbackChatID(cq)
	if !ok {
		answerCallback(ctx, b, log, cq.ID, msgs.GeneralError, true)
		return
	}
	key := admin.SessionKey{ChatID: chatID, UserID: cq.From.ID}

	switch cq.Data {
	case CallbackAdminEditText:
		if err := h.deps.Admin.BeginEdit(key); err != nil {
			answerCallback(ctx, b, log, cq.ID, msgs.Unauthorized, true)
			return
		}
		answerCallback(ctx, b, log, cq.ID, "", false)
		sendText(ctx, b, log, chatID, msgs.AdminEditPrompt, nil)

	case CallbackAdminShowText:
		tmpl, err := h.deps.Admin.CurrentTemplate(ctx, cq.From.ID)
		if err != nil {
			reply := msgs.GeneralError
			if errors.Is(err, admin.ErrUnauthorized) {
				reply = msgs.Unauthorized
			} else {
				log.ErrorContext(ctx, "Failed to read current template", "error", err)
			}
			answerCallback(ctx, b, log, cq.ID, reply, true)
			return
		}
		answerCallback(ctx, b, log, cq.ID, "", false)
		sendText(ctx, b, log, chatID, fmt.Sprintf(msgs.AdminCurrentFmt, tmpl), nil)

	default:
		log.WarnContext(ctx, "Unknown admin callback", "data", cq.Data, "user_id", cq.From.ID)
		answerCallback(ctx, b, log, cq.ID, "", false)
	}
}

// NewCancelHandler returns a handler that abandons a pending template edit.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
}

func (h cancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	key := admin.SessionKey{ChatID: chatID, UserID: update.Message.From.ID}

	reply := h.deps.Config.Messages.AdminNothingToCancel
	if h.deps.Admin.Cancel(key) {
		log.InfoContext(ctx, "Admin edit cancelled", "user_id", key.UserID, "chat_id", chatID)
		reply = h.deps.Config.Messages.AdminCancelled
	}
	sendText(ctx, b, log, chatID, reply, nil)
}

// NewTemplateTextHandler returns the default handler. Plain text from a user
// whose session awaits a template is submitted to the admin flow; commands
// and anything else are ignored and leave the session untouched.
func NewTemplateTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return templateTextHandler{deps}.Handle
}

type templateTextHandler struct {
	deps HandlerDeps
}

func (h templateTextHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "template_text")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" || isCommand(msg) {
		return
	}
	key := admin.SessionKey{ChatID: msg.Chat.ID, UserID: msg.From.ID}

	handled, err := h.deps.Admin.Submit(ctx, key, msg.Text)
	if !handled {
		return
	}

	msgs := h.deps.Config.Messages
	switch {
	case err == nil:
		sendText(ctx, b, log, msg.Chat.ID, msgs.AdminTemplateSaved, nil)
	case errors.Is(err, percent.ErrInvalidTemplate):
		sendText(ctx, b, log, msg.Chat.ID, msgs.AdminInvalidTemplate, nil)
	default:
		log.ErrorContext(ctx, "Failed to save template", "error", err, "user_id", key.UserID)
		sendText(ctx, b, log, msg.Chat.ID, msgs.GeneralError, nil)
	}
}
