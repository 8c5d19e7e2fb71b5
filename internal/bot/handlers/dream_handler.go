package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sonnik/internal/dialog"
	"github.com/edgard/sonnik/internal/session"
)

type dreamHandler struct {
	deps HandlerDeps
}

// NewDreamHandler creates the default handler: every message that is not a
// command is either the next answer of a link dialogue or a dream to
// interpret.
func NewDreamHandler(deps HandlerDeps) bot.HandlerFunc {
	return dreamHandler{deps}.Handle
}

func (h dreamHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	log := h.deps.Logger.With("handler", "dream", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	id := channelID(msg.From)
	reply, handled, err := linkStep(ctx, h.deps, id, session.Input{Kind: session.InputText, Text: msg.Text})
	if handled {
		if err != nil {
			log.WarnContext(ctx, "Link dialogue step failed", "error", err)
		}
		// The answer may be a password; keep it out of the chat.
		if _, delErr := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID}); delErr != nil {
			log.DebugContext(ctx, "Could not delete link dialogue message", "error", delErr)
		}
		sendText(ctx, b, h.deps, msg.Chat.ID, reply)
		return
	}

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: msg.Chat.ID, Action: models.ChatActionTyping}); err != nil {
		log.DebugContext(ctx, "Failed to send typing action", "error", err)
	}

	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout(h.deps))
	defer cancel()

	reply, err = h.deps.Service.HandleTurn(turnCtx, dialog.Turn{
		Channel:   channelKind,
		ChannelID: id,
		Utterance: msg.Text,
		ThreadID:  strconv.FormatInt(msg.Chat.ID, 10),
		Profile:   &dialog.NewProfile{Name: displayName(msg.From)},
	})
	switch {
	case errors.Is(err, dialog.ErrEmptyInput):
		log.DebugContext(ctx, "Ignoring message without text")
	case err != nil:
		log.ErrorContext(ctx, "Failed to handle turn", "error", err)
	}

	replyTo(ctx, b, h.deps, msg, reply)
}
