package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Callback data values carried by inline keyboard buttons.
const (
	CallbackPercentAgain   = "percent:again"
	CallbackAdminEditText  = "admin:edit_text"
	CallbackAdminShowText  = "admin:show_text"
	callbackAdminPrefix    = "admin:"
	inlineSwitchQueryValue = " "
)

// RegisteredHandler describes one route. When Match is set it takes
// precedence over HandlerType, Pattern and MatchType.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Match       tgbot.MatchFunc
}

// RegisterAllCommands returns every route keyed by a readable name used in
// logs and the command menu.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	cmds := deps.Config.Commands
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	drawMiddleware := []tgbot.Middleware{RateLimited(deps)}

	handlers["/"+cmds.Percent] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     cmds.Percent,
		Handler:     NewPercentHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  drawMiddleware,
	}
	handlers[CallbackPercentAgain] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     CallbackPercentAgain,
		Handler:     NewPercentAgainHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
		Middleware:  drawMiddleware,
	}
	handlers["inline_query"] = RegisteredHandler{
		Handler:    NewInlineHandler(deps),
		Match:      isInlineQuery,
		Middleware: drawMiddleware,
	}
	handlers["/"+cmds.Stats] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     cmds.Stats,
		Handler:     NewStatsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	handlers["/"+cmds.Admin] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     cmds.Admin,
		Handler:     NewAdminPanelHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}
	handlers[callbackAdminPrefix] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     callbackAdminPrefix,
		Handler:     NewAdminCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  adminMiddleware,
	}
	handlers["/"+cmds.Cancel] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     cmds.Cancel,
		Handler:     NewCancelHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	return handlers
}

// BotCommands returns the command menu published with setMyCommands.
// Admin commands are left out of the public menu.
func BotCommands(deps HandlerDeps) []models.BotCommand {
	cmds := deps.Config.Commands
	return []models.BotCommand{
		{Command: cmds.Percent, Description: cmds.PercentDescription},
		{Command: cmds.Stats, Description: cmds.StatsDescription},
		{Command: "help", Description: cmds.HelpDescription},
	}
}

func isInlineQuery(update *models.Update) bool {
	return update.InlineQuery != nil
}
