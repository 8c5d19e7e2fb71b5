package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// IdentityStore maps channel identifiers to users.
type IdentityStore interface {
	// ResolveByChannel returns the user bound to (kind, channelID) or ErrNotFound.
	ResolveByChannel(ctx context.Context, kind ChannelKind, channelID string) (*User, error)

	// GetUser returns the user with the given id or ErrNotFound.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// CreateUser inserts a user together with its first channel identity.
	// Returns ErrDuplicate if the identity or phone is already taken.
	CreateUser(ctx context.Context, nu NewUser, kind ChannelKind, channelID string) (*User, error)

	// LinkChannel binds another channel identity to an existing user. It is a
	// no-op when the identity already points at userID and ErrDuplicate when
	// it points at someone else.
	LinkChannel(ctx context.Context, userID int64, kind ChannelKind, channelID string) error

	// RebindChannel moves an identity from one user to another. Returns
	// ErrNotFound unless the identity currently belongs to fromUserID.
	RebindChannel(ctx context.Context, kind ChannelKind, channelID string, fromUserID, toUserID int64) error
}

// ConversationStore persists chats and their messages.
type ConversationStore interface {
	// GetOrCreateChat returns the user's chat on kind, creating it on first use.
	GetOrCreateChat(ctx context.Context, userID int64, kind ChannelKind, threadID string) (*Chat, error)

	// FindChat returns the user's chat on kind or ErrNotFound, without creating it.
	FindChat(ctx context.Context, userID int64, kind ChannelKind) (*Chat, error)

	// AppendMessage stores a message with the next sequence number of the chat.
	AppendMessage(ctx context.Context, chatID int64, role Role, content string) (*Message, error)

	// ReadHistory returns up to limit most recent messages, oldest first.
	ReadHistory(ctx context.Context, chatID int64, limit int) ([]Message, error)
}

// SessionStore persists web logins and channel-linking progress.
type SessionStore interface {
	CreateWebSession(ctx context.Context, session *WebSession) error
	// GetWebSession returns ErrNotFound for unknown or expired tokens.
	GetWebSession(ctx context.Context, token string, now time.Time) (*WebSession, error)
	DeleteWebSession(ctx context.Context, token string) error
	DeleteExpiredWebSessions(ctx context.Context, now time.Time) (int64, error)

	GetLinkSession(ctx context.Context, kind ChannelKind, channelID string) (*LinkSession, error)
	SaveLinkSession(ctx context.Context, session *LinkSession) error
	DeleteLinkSession(ctx context.Context, kind ChannelKind, channelID string) error
	DeleteStaleLinkSessions(ctx context.Context, before time.Time) (int64, error)
}

// Store is the complete data access layer.
type Store interface {
	IdentityStore
	ConversationStore
	SessionStore

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunSQLMaintenance checkpoints the WAL and executes VACUUM, which SQLite
// requires to run outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		s.logger.WarnContext(ctx, "WAL checkpoint failed", "error", err)
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

// rollback is deferred right after BeginTxx; it is silent once the
// transaction has been committed.
func (s *sqlxStore) rollback(ctx context.Context, tx *sqlx.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.WarnContext(ctx, "Error rolling back transaction", "error", err)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
