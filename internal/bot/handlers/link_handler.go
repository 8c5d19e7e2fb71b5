package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/session"
)

const channelKind = database.ChannelTelegram

func channelID(u *models.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

// NewLinkHandler returns a handler for /link, which starts binding this
// Telegram account to a web account.
func NewLinkHandler(deps HandlerDeps) bot.HandlerFunc {
	return linkHandler{deps: deps, kind: session.InputStart}.Handle
}

// NewCancelHandler returns a handler for /cancel.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return linkHandler{deps: deps, kind: session.InputCancel}.Handle
}

type linkHandler struct {
	deps HandlerDeps
	kind session.InputKind
}

func (h linkHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	log := h.deps.Logger.With("handler", "link")
	log.InfoContext(ctx, "Handling link command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "input", h.kind)

	reply, _, err := linkStep(ctx, h.deps, channelID(msg.From), session.Input{Kind: h.kind})
	if err != nil {
		log.ErrorContext(ctx, "Link step failed", "error", err, "user_id", msg.From.ID)
	}
	sendText(ctx, b, h.deps, msg.Chat.ID, reply)
}

// linkStep feeds in into the persisted link dialogue of id. handled is false
// when there is no dialogue and in is an ordinary message.
func linkStep(ctx context.Context, deps HandlerDeps, id string, in session.Input) (reply string, handled bool, err error) {
	m := deps.Config.Messages

	progress := session.Progress{State: session.StateIdle}
	stored, err := deps.Sessions.GetLinkSession(ctx, channelKind, id)
	switch {
	case err == nil:
		progress = session.Progress{State: session.State(stored.State), Phone: stored.Phone}
	case !errors.Is(err, database.ErrNotFound):
		return m.GeneralError, true, fmt.Errorf("failed to load link session: %w", err)
	}

	next, action := session.Advance(progress, in)
	if action == session.ActionNone {
		return "", false, nil
	}

	if err := saveProgress(ctx, deps, id, next); err != nil {
		return m.GeneralError, true, err
	}

	switch action {
	case session.ActionAskPhone:
		return m.LinkAskPhone, true, nil
	case session.ActionAskPassword:
		return m.LinkAskPassword, true, nil
	case session.ActionCancelled:
		return m.LinkCancelled, true, nil
	case session.ActionNothingToCancel:
		return m.LinkNothing, true, nil
	case session.ActionAuthenticate:
		if _, err := deps.Service.LinkWithCredential(ctx, channelKind, id, next.Phone, in.Text); err != nil {
			return deps.Service.UserMessage(err), true, err
		}
		return m.LinkSuccess, true, nil
	default:
		return "", false, nil
	}
}

func saveProgress(ctx context.Context, deps HandlerDeps, id string, p session.Progress) error {
	if p.State == session.StateIdle {
		if err := deps.Sessions.DeleteLinkSession(ctx, channelKind, id); err != nil {
			return fmt.Errorf("failed to clear link session: %w", err)
		}
		return nil
	}
	err := deps.Sessions.SaveLinkSession(ctx, &database.LinkSession{
		ChannelKind: channelKind,
		ChannelID:   id,
		State:       string(p.State),
		Phone:       p.Phone,
		UpdatedAt:   time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to save link session: %w", err)
	}
	return nil
}
