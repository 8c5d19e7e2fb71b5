package handlers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edgard/sonnik/internal/config"
	"github.com/edgard/sonnik/internal/credential"
	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/dialog"
	"github.com/edgard/sonnik/internal/logger"
	"github.com/edgard/sonnik/internal/prompt"
	"github.com/edgard/sonnik/internal/session"
)

type staticCompleter string

func (c staticCompleter) Complete(context.Context, []prompt.Message) string { return string(c) }

func newTestDeps(t *testing.T) (HandlerDeps, database.Store) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "handlers.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, nil)

	composer, err := prompt.NewComposer("", nil)
	require.NoError(t, err)
	cfg := &config.Config{Messages: config.DefaultMessages}
	svc := dialog.NewService(dialog.Deps{
		Store:         store,
		Composer:      composer,
		Completer:     staticCompleter("ok"),
		Hasher:        credential.NewHasher(bcrypt.MinCost),
		Messages:      cfg.Messages,
		HistoryWindow: 6,
	})
	return HandlerDeps{Logger: logger.Discard(), Config: cfg, Service: svc, Sessions: store}, store
}

func TestLinkStepFullDialogue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deps, store := newTestDeps(t)
	m := deps.Config.Messages

	userID, err := deps.Service.RegisterUser(ctx, dialog.Registration{
		Phone: "+79990000001", Name: "Anna", BirthDate: "1995-06-01", Password: "secret-password",
	})
	require.NoError(t, err)

	steps := []struct {
		in      session.Input
		reply   string
		handled bool
		state   session.State
	}{
		{session.Input{Kind: session.InputText, Text: "a dream"}, "", false, ""},
		{session.Input{Kind: session.InputStart}, m.LinkAskPhone, true, session.StateAwaitingPhone},
		{session.Input{Kind: session.InputText, Text: "not a phone"}, m.LinkAskPhone, true, session.StateAwaitingPhone},
		{session.Input{Kind: session.InputText, Text: "+7 999 000-00-01"}, m.LinkAskPassword, true, session.StateAwaitingPassword},
		{session.Input{Kind: session.InputText, Text: "secret-password"}, m.LinkSuccess, true, ""},
	}

	for i, step := range steps {
		reply, handled, err := linkStep(ctx, deps, "31337", step.in)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.reply, reply, "step %d", i)
		assert.Equal(t, step.handled, handled, "step %d", i)

		stored, err := store.GetLinkSession(ctx, channelKind, "31337")
		if step.state == "" {
			assert.ErrorIs(t, err, database.ErrNotFound, "step %d", i)
			continue
		}
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, string(step.state), stored.State, "step %d", i)
	}

	user, err := store.ResolveByChannel(ctx, channelKind, "31337")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestLinkStepWrongPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deps, store := newTestDeps(t)

	_, err := deps.Service.RegisterUser(ctx, dialog.Registration{
		Phone: "+79990000002", Name: "Ivan", BirthDate: "1980-01-01", Password: "right-password",
	})
	require.NoError(t, err)

	for _, in := range []session.Input{
		{Kind: session.InputStart},
		{Kind: session.InputText, Text: "+79990000002"},
	} {
		_, _, err := linkStep(ctx, deps, "1", in)
		require.NoError(t, err)
	}

	reply, handled, err := linkStep(ctx, deps, "1", session.Input{Kind: session.InputText, Text: "wrong"})
	assert.ErrorIs(t, err, dialog.ErrInvalidCredential)
	assert.True(t, handled)
	assert.Equal(t, deps.Config.Messages.InvalidCredential, reply)

	_, err = store.ResolveByChannel(ctx, channelKind, "1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = store.GetLinkSession(ctx, channelKind, "1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLinkStepCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deps, _ := newTestDeps(t)
	m := deps.Config.Messages

	reply, _, err := linkStep(ctx, deps, "5", session.Input{Kind: session.InputCancel})
	require.NoError(t, err)
	assert.Equal(t, m.LinkNothing, reply)

	_, _, err = linkStep(ctx, deps, "5", session.Input{Kind: session.InputStart})
	require.NoError(t, err)

	reply, _, err = linkStep(ctx, deps, "5", session.Input{Kind: session.InputCancel})
	require.NoError(t, err)
	assert.Equal(t, m.LinkCancelled, reply)

	_, handled, err := linkStep(ctx, deps, "5", session.Input{Kind: session.InputText, Text: "+79990000003"})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		user models.User
		want string
	}{
		{"first and last", models.User{FirstName: "Anna", LastName: "Ivanova"}, "Anna Ivanova"},
		{"first only", models.User{FirstName: "Anna"}, "Anna"},
		{"username fallback", models.User{Username: "anna_dreams"}, "anna_dreams"},
		{"nothing", models.User{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, displayName(&tt.user))
		})
	}
}

func TestPrivateUsersOnly(t *testing.T) {
	t.Parallel()
	deps := HandlerDeps{Logger: logger.Discard()}

	private := models.Chat{ID: 1, Type: models.ChatTypePrivate}
	group := models.Chat{ID: -100, Type: models.ChatTypeGroup}
	human := &models.User{ID: 1}

	tests := []struct {
		name   string
		update *models.Update
		want   bool
	}{
		{"private message", &models.Update{Message: &models.Message{Chat: private, From: human}}, true},
		{"no message", &models.Update{}, false},
		{"no sender", &models.Update{Message: &models.Message{Chat: private}}, false},
		{"bot sender", &models.Update{Message: &models.Message{Chat: private, From: &models.User{ID: 2, IsBot: true}}}, false},
		{"group chat", &models.Update{Message: &models.Message{Chat: group, From: human}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			called := false
			next := func(context.Context, *tgbot.Bot, *models.Update) { called = true }
			PrivateUsersOnly(deps)(next)(context.Background(), nil, tt.update)
			assert.Equal(t, tt.want, called)
		})
	}
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()
	deps, _ := newTestDeps(t)

	cmds := RegisterAllCommands(deps)
	for _, name := range []string{"/start", "/help", "/about", "/link", "/cancel"} {
		h, ok := cmds[name]
		require.True(t, ok, name)
		assert.Equal(t, name[1:], h.Pattern)
		assert.NotEmpty(t, h.Description)
		assert.NotNil(t, h.Handler)
		assert.Equal(t, tgbot.MatchTypeCommandStartOnly, h.MatchType)
		assert.Len(t, h.Middleware, 1)
	}
}

func TestTurnTimeoutOutlastsCompletion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  *config.Config
		want time.Duration
	}{
		{"no config", nil, config.DefaultAITimeout + turnOverhead},
		{"zero timeout", &config.Config{}, config.DefaultAITimeout + turnOverhead},
		{"long model timeout", &config.Config{AI: config.AIConfig{Timeout: 10 * time.Minute}}, 10*time.Minute + turnOverhead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := turnTimeout(HandlerDeps{Config: tt.cfg})
			assert.Equal(t, tt.want, got)
			if tt.cfg != nil {
				assert.Greater(t, got, tt.cfg.AI.Timeout)
			}
		})
	}
}
