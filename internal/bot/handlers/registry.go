package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Description string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	private := []tgbot.Middleware{PrivateUsersOnly(deps)}

	command := func(pattern, description string, h tgbot.HandlerFunc) {
		handlers["/"+pattern] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Description: description,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  private,
		}
	}

	command("start", "Начать", NewStartHandler(deps))
	command("help", "Как пользоваться", NewHelpHandler(deps))
	command("about", "О боте", NewAboutHandler(deps))
	command("link", "Связать с аккаунтом на сайте", NewLinkHandler(deps))
	command("cancel", "Отменить привязку", NewCancelHandler(deps))

	return handlers
}

// DefaultHandler is the handler for every update no command matched.
func DefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return PrivateUsersOnly(deps)(NewDreamHandler(deps))
}
