package database

import (
	"context"
	"errors"
	"fmt"
)

const userColumns = `u.id, u.name, u.phone, u.birth_date, u.password_hash, u.created_at`

// ResolveByChannel returns the user bound to a channel identity.
func (s *sqlxStore) ResolveByChannel(ctx context.Context, kind ChannelKind, channelID string) (*User, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id cannot be empty: %w", ErrNotFound)
	}

	var user User
	query := `
        SELECT ` + userColumns + `
        FROM user_identities i
        JOIN users u ON u.id = i.user_id
        WHERE i.channel_kind = ? AND i.channel_id = ?;
    `
	if err := s.db.GetContext(ctx, &user, query, kind, channelID); err != nil {
		return nil, fmt.Errorf("failed to resolve %s identity: %w", kind, translateError(err))
	}
	return &user, nil
}

// GetUser returns a user by id.
func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = ?;`
	if err := s.db.GetContext(ctx, &user, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, translateError(err))
	}
	return &user, nil
}

// CreateUser inserts the user row and its first identity in one transaction.
func (s *sqlxStore) CreateUser(ctx context.Context, nu NewUser, kind ChannelKind, channelID string) (*User, error) {
	if nu.Name == "" {
		return nil, fmt.Errorf("user must have a name")
	}
	if channelID == "" {
		return nil, fmt.Errorf("user must have a channel id")
	}

	user := &User{
		Name:         nu.Name,
		Phone:        nullString(nu.Phone),
		BirthDate:    nullString(nu.BirthDate),
		PasswordHash: nullString(nu.PasswordHash),
		CreatedAt:    s.now(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	result, err := tx.NamedExecContext(ctx, `
        INSERT INTO users (name, phone, birth_date, password_hash, created_at)
        VALUES (:name, :phone, :birth_date, :password_hash, :created_at);
    `, user)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", translateError(err))
	}
	if user.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to get new user id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_identities (channel_kind, channel_id, user_id) VALUES (?, ?, ?);`,
		kind, channelID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s identity: %w", kind, translateError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	s.logger.InfoContext(ctx, "Created user", "user_id", user.ID, "channel_kind", kind)
	return user, nil
}

// LinkChannel attaches a channel identity to an existing user.
func (s *sqlxStore) LinkChannel(ctx context.Context, userID int64, kind ChannelKind, channelID string) error {
	if channelID == "" {
		return fmt.Errorf("channel id cannot be empty")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_identities (channel_kind, channel_id, user_id) VALUES (?, ?, ?);`,
		kind, channelID, userID)
	if err == nil {
		s.logger.InfoContext(ctx, "Linked channel", "user_id", userID, "channel_kind", kind)
		return nil
	}

	err = translateError(err)
	if !errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("failed to link %s identity: %w", kind, err)
	}

	var owner int64
	lookupErr := s.db.GetContext(ctx, &owner,
		`SELECT user_id FROM user_identities WHERE channel_kind = ? AND channel_id = ?;`,
		kind, channelID)
	if lookupErr != nil {
		return fmt.Errorf("failed to check existing %s identity: %w", kind, translateError(lookupErr))
	}
	if owner == userID {
		return nil
	}
	return fmt.Errorf("%s identity already bound to another user: %w", kind, ErrDuplicate)
}

// RebindChannel reassigns an identity. The user it leaves keeps its chats.
func (s *sqlxStore) RebindChannel(ctx context.Context, kind ChannelKind, channelID string, fromUserID, toUserID int64) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE user_identities SET user_id = ?
        WHERE channel_kind = ? AND channel_id = ? AND user_id = ?;
    `, toUserID, kind, channelID, fromUserID)
	if err != nil {
		return fmt.Errorf("failed to rebind %s identity: %w", kind, translateError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rebind %s identity: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s identity not owned by user %d: %w", kind, fromUserID, ErrNotFound)
	}

	s.logger.InfoContext(ctx, "Rebound channel", "from_user_id", fromUserID, "to_user_id", toUserID, "channel_kind", kind)
	return nil
}
