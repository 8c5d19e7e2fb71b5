// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// PrivateUsersOnly drops updates that carry no message or sender, come from
// other bots, or arrive from group chats. Handlers behind it may rely on
// update.Message and update.Message.From being set.
func PrivateUsersOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			msg := update.Message
			if msg == nil || msg.From == nil {
				deps.Logger.DebugContext(ctx, "Ignoring update without message or sender", "update_id", update.ID)
				return
			}
			if msg.From.IsBot {
				deps.Logger.DebugContext(ctx, "Ignoring message from bot", "user_id", msg.From.ID)
				return
			}
			if msg.Chat.Type != models.ChatTypePrivate {
				deps.Logger.DebugContext(ctx, "Ignoring message outside private chat", "chat_id", msg.Chat.ID, "chat_type", msg.Chat.Type)
				return
			}
			next(ctx, bot, update)
		}
	}
}
