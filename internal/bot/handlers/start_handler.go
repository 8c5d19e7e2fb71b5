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

// startHandler greets the user. A pending link dialogue is abandoned so the
// next message is treated as a dream again.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")
	msg := update.Message

	log.InfoContext(ctx, "Handling /start command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	if err := h.deps.Sessions.DeleteLinkSession(ctx, channelKind, channelID(msg.From)); err != nil {
		log.WarnContext(ctx, "Failed to reset link session", "error", err, "user_id", msg.From.ID)
	}

	sendText(ctx, b, h.deps, msg.Chat.ID, h.deps.Config.Messages.Welcome)
}
