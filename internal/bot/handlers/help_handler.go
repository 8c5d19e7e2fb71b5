package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "help", text: deps.Config.Messages.Help}.Handle
}

// NewAboutHandler returns a handler for the /about command.
func NewAboutHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "about", text: deps.Config.Messages.About}.Handle
}

// staticHandler answers a command with a fixed text.
type staticHandler struct {
	deps HandlerDeps
	name string
	text string
}

func (h staticHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)
	log.InfoContext(ctx, "Handling command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)
	sendText(ctx, b, h.deps, update.Message.Chat.ID, h.text)
}
