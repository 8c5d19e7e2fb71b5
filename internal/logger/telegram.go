package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Middleware creates a logging middleware for the Telegram bot. It logs
// every update before and after the handler runs.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			entry := log.With("update_id", update.ID)

			switch {
			case update.Message != nil:
				msg := update.Message
				entry = entry.With(
					"update_type", "message",
					"message_id", msg.ID,
					"chat_id", msg.Chat.ID,
					"text_preview", Preview(msg.Text, 32),
				)
				if msg.From != nil {
					entry = entry.With("user_id", msg.From.ID)
				}
			case update.EditedMessage != nil:
				entry = entry.With(
					"update_type", "edited_message",
					"chat_id", update.EditedMessage.Chat.ID,
				)
			default:
				entry = entry.With("update_type", "other")
			}

			entry.DebugContext(ctx, "Processing update")
			next(ctx, b, update)
			entry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}
