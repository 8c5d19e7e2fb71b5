package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sonnik/internal/config"
)

const (
	sendMessageTimeout = 10 * time.Second
	// turnOverhead is added to the model timeout for storage and typing.
	turnOverhead = 30 * time.Second
)

// turnTimeout always outlasts the completion timeout so a slow model ends in
// the gateway fallback instead of a cancelled turn.
func turnTimeout(deps HandlerDeps) time.Duration {
	if deps.Config == nil || deps.Config.AI.Timeout <= 0 {
		return config.DefaultAITimeout + turnOverhead
	}
	return deps.Config.AI.Timeout + turnOverhead
}

// replyTo answers msg in its chat, quoting it. Failures are only logged:
// there is nobody to report them to.
func replyTo(ctx context.Context, b *bot.Bot, deps HandlerDeps, msg *models.Message, text string) {
	log := deps.Logger.With("chat_id", msg.Chat.ID)
	if text == "" {
		log.WarnContext(ctx, "Refusing to send empty reply")
		return
	}
	if ctx.Err() != nil {
		log.ErrorContext(ctx, "Context cancelled before sending reply", "error", ctx.Err())
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	sent, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID, AllowSendingWithoutReply: true},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err)
		return
	}
	log.DebugContext(ctx, "Sent reply", "message_id", sent.ID)
}

// sendText posts text to chatID without quoting anything.
func sendText(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := b.SendMessage(sendCtx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}
