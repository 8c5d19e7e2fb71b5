// Package dialog is the channel-independent core of Sonnik. Front-ends turn
// their transport events into calls on Service and send back whatever text
// it returns.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edgard/sonnik/internal/config"
	"github.com/edgard/sonnik/internal/credential"
	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/history"
	"github.com/edgard/sonnik/internal/logger"
	"github.com/edgard/sonnik/internal/prompt"
	"github.com/edgard/sonnik/internal/session"
	"github.com/edgard/sonnik/internal/text"
)

// persistTimeout bounds the write of the reply once the model call is over.
const persistTimeout = 5 * time.Second

// Completer exchanges a composed prompt for a reply. It never fails: errors
// are turned into fallback texts by the implementation.
type Completer interface {
	Complete(ctx context.Context, msgs []prompt.Message) string
}

// Turn is one utterance arriving on a channel.
type Turn struct {
	Channel   database.ChannelKind
	ChannelID string
	Utterance string
	// ThreadID is the channel's own conversation id, stored on first use.
	ThreadID string
	// Profile, when set, lets an unknown identity be registered on the fly.
	Profile *NewProfile
}

// NewProfile is what a channel knows about a person it has never seen.
type NewProfile struct {
	Name string
}

// Registration is a web sign-up form.
type Registration struct {
	Phone     string `json:"phone"      validate:"required,e164"`
	Name      string `json:"name"       validate:"required,max=100"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Password  string `json:"password"   validate:"required,min=6,max=72"`
}

// Deps are the collaborators of a Service.
type Deps struct {
	Store         database.Store
	Composer      *prompt.Composer
	Completer     Completer
	Hasher        *credential.Hasher
	Messages      config.MessagesConfig
	HistoryWindow int
	Logger        *slog.Logger
}

// Service runs turns, registrations and logins. It holds no per-user state
// and is safe for concurrent use.
type Service struct {
	store     database.Store
	composer  *prompt.Composer
	completer Completer
	hasher    *credential.Hasher
	messages  config.MessagesConfig
	window    int
	validate  *validator.Validate
	log       *slog.Logger
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:     deps.Store,
		composer:  deps.Composer,
		completer: deps.Completer,
		hasher:    deps.Hasher,
		messages:  deps.Messages,
		window:    deps.HistoryWindow,
		validate:  validator.New(),
		log:       log.With("component", "dialog"),
	}
}

// HandleTurn stores the utterance, asks the model for an interpretation with
// the recent history as context, stores the reply and returns it.
//
// The returned text is always fit to show to the user: the reply, a gateway
// fallback, or the localized message for the returned error.
func (s *Service) HandleTurn(ctx context.Context, turn Turn) (string, error) {
	utterance := text.Clean(turn.Utterance)
	if utterance == "" {
		return s.messages.EmptyInput, ErrEmptyInput
	}

	log := s.log.With("channel", turn.Channel, "channel_id", turn.ChannelID)

	user, err := s.resolveTurnUser(ctx, turn)
	if err != nil {
		return s.fail(ctx, log, "Failed to resolve user", err)
	}
	log = log.With("user_id", user.ID)

	chat, err := s.store.GetOrCreateChat(ctx, user.ID, turn.Channel, turn.ThreadID)
	if err != nil {
		return s.fail(ctx, log, "Failed to get chat", err)
	}
	log = log.With("chat_id", chat.ID)

	userMsg, err := s.store.AppendMessage(ctx, chat.ID, database.RoleUser, utterance)
	if err != nil {
		return s.fail(ctx, log, "Failed to store user message", err)
	}

	recent, err := s.store.ReadHistory(ctx, chat.ID, s.window+1)
	if err != nil {
		return s.fail(ctx, log, "Failed to read history", err)
	}
	prior := make([]prompt.Message, 0, len(recent))
	for _, m := range recent {
		if m.Seq >= userMsg.Seq {
			continue
		}
		prior = append(prior, prompt.Message{Role: prompt.Role(m.Role), Content: m.Content})
	}

	msgs := s.composer.Compose(profileOf(user), history.Window(prior, s.window), utterance)

	log.InfoContext(ctx, "Handling turn", "history", len(msgs)-2, "utterance", logger.Preview(utterance, 80))
	reply := s.completer.Complete(ctx, msgs)

	// A fallback caused by the caller's deadline must still be stored.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if _, err := s.store.AppendMessage(persistCtx, chat.ID, database.RoleAssistant, reply); err != nil {
		return s.fail(ctx, log, "Failed to store assistant message", err)
	}

	log.DebugContext(ctx, "Turn completed", "reply_len", len(reply))
	return reply, nil
}

func (s *Service) resolveTurnUser(ctx context.Context, turn Turn) (*database.User, error) {
	user, err := s.store.ResolveByChannel(ctx, turn.Channel, turn.ChannelID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if turn.Profile == nil {
		return nil, ErrIdentityNotFound
	}

	name := strings.TrimSpace(turn.Profile.Name)
	if name == "" {
		name = prompt.DefaultName
	}
	user, err = s.store.CreateUser(ctx, database.NewUser{Name: name}, turn.Channel, turn.ChannelID)
	if errors.Is(err, database.ErrDuplicate) {
		// Another turn registered the same identity first.
		return s.store.ResolveByChannel(ctx, turn.Channel, turn.ChannelID)
	}
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "Registered user from channel", "user_id", user.ID, "channel", turn.Channel)
	return user, nil
}

func (s *Service) fail(ctx context.Context, log *slog.Logger, msg string, err error) (string, error) {
	if errors.Is(err, ErrIdentityNotFound) {
		log.InfoContext(ctx, "Turn from unknown identity")
		return s.messages.IdentityNotFound, err
	}
	log.ErrorContext(ctx, msg, "error", err)
	return s.messages.GeneralError, fmt.Errorf("%s: %w", strings.ToLower(msg), err)
}

// RegisterUser validates reg, stores the user with a hashed password and
// binds the phone as the user's web identity.
func (s *Service) RegisterUser(ctx context.Context, reg Registration) (int64, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.BirthDate = strings.TrimSpace(reg.BirthDate)
	if phone := session.NormalizePhone(reg.Phone); phone != "" {
		reg.Phone = phone
	}
	if err := s.validate.Struct(reg); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return 0, err
	}

	user, err := s.store.CreateUser(ctx, database.NewUser{
		Name:         reg.Name,
		Phone:        reg.Phone,
		BirthDate:    reg.BirthDate,
		PasswordHash: hash,
	}, database.ChannelWeb, reg.Phone)
	if errors.Is(err, database.ErrDuplicate) {
		return 0, ErrDuplicateIdentity
	}
	if err != nil {
		return 0, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user.ID, nil
}

// Authenticate checks secret against the password of the user bound to
// (kind, channelID). Unknown identities and wrong secrets are both reported
// as ErrInvalidCredential.
func (s *Service) Authenticate(ctx context.Context, kind database.ChannelKind, channelID, secret string) (*database.User, error) {
	if kind == database.ChannelWeb {
		if phone := session.NormalizePhone(channelID); phone != "" {
			channelID = phone
		}
	}

	user, err := s.store.ResolveByChannel(ctx, kind, channelID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if err := s.hasher.Verify(user.PasswordHash.String, secret); err != nil {
		s.log.InfoContext(ctx, "Authentication failed", "channel", kind)
		return nil, ErrInvalidCredential
	}
	return user, nil
}

// LinkChannel binds (kind, channelID) to userID. It is idempotent and fails
// with ErrDuplicateIdentity when the identity belongs to someone else.
func (s *Service) LinkChannel(ctx context.Context, userID int64, kind database.ChannelKind, channelID string) error {
	err := s.store.LinkChannel(ctx, userID, kind, channelID)
	if errors.Is(err, database.ErrDuplicate) {
		return ErrDuplicateIdentity
	}
	if err != nil {
		return fmt.Errorf("failed to link channel: %w", err)
	}
	s.log.InfoContext(ctx, "Channel linked", "user_id", userID, "channel", kind)
	return nil
}

// LinkWithCredential authenticates with a web phone and password and binds
// (kind, channelID) to that account. An identity currently held by an
// account without a password, i.e. one created on the fly by the channel
// itself, is moved over; its old chats stay with the old account.
func (s *Service) LinkWithCredential(ctx context.Context, kind database.ChannelKind, channelID, phone, password string) (*database.User, error) {
	user, err := s.Authenticate(ctx, database.ChannelWeb, phone, password)
	if err != nil {
		return nil, err
	}

	err = s.LinkChannel(ctx, user.ID, kind, channelID)
	if !errors.Is(err, ErrDuplicateIdentity) {
		return user, err
	}

	owner, err := s.store.ResolveByChannel(ctx, kind, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current owner: %w", err)
	}
	if owner.PasswordHash.Valid {
		return nil, ErrDuplicateIdentity
	}
	if err := s.store.RebindChannel(ctx, kind, channelID, owner.ID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to rebind channel: %w", err)
	}
	s.log.InfoContext(ctx, "Channel moved to registered account",
		"from_user_id", owner.ID, "user_id", user.ID, "channel", kind)
	return user, nil
}

// History returns up to limit most recent messages of the user's chat on
// kind, oldest first. A user without a chat there has an empty history.
func (s *Service) History(ctx context.Context, userID int64, kind database.ChannelKind, limit int) ([]database.Message, error) {
	chat, err := s.store.FindChat(ctx, userID, kind)
	if errors.Is(err, database.ErrNotFound) {
		return []database.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	msgs, err := s.store.ReadHistory(ctx, chat.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return msgs, nil
}

// Profile returns the user with the given id.
func (s *Service) Profile(ctx context.Context, userID int64) (*database.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// UserMessage returns the localized text for err.
func (s *Service) UserMessage(err error) string {
	return userMessage(s.messages, err)
}

func profileOf(u *database.User) prompt.Profile {
	return prompt.Profile{Name: u.Name, BirthDate: u.BirthDate.String}
}
