package database

import (
	"context"
	"fmt"
	"time"
)

// CreateWebSession stores a new login token.
func (s *sqlxStore) CreateWebSession(ctx context.Context, session *WebSession) error {
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO web_sessions (token, user_id, created_at, expires_at)
        VALUES (:token, :user_id, :created_at, :expires_at);
    `, session)
	if err != nil {
		return fmt.Errorf("failed to create web session: %w", translateError(err))
	}
	return nil
}

// GetWebSession treats expired rows as missing.
func (s *sqlxStore) GetWebSession(ctx context.Context, token string, now time.Time) (*WebSession, error) {
	var session WebSession
	err := s.db.GetContext(ctx, &session, `
        SELECT token, user_id, created_at, expires_at
        FROM web_sessions
        WHERE token = ? AND expires_at > ?;
    `, token, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get web session: %w", translateError(err))
	}
	return &session, nil
}

// DeleteWebSession removes a token; unknown tokens are not an error.
func (s *sqlxStore) DeleteWebSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE token = ?;`, token); err != nil {
		return fmt.Errorf("failed to delete web session: %w", err)
	}
	return nil
}

// DeleteExpiredWebSessions returns the number of rows removed.
func (s *sqlxStore) DeleteExpiredWebSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE expires_at <= ?;`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired web sessions: %w", err)
	}
	return result.RowsAffected()
}

// GetLinkSession returns ErrNotFound when no linking dialogue is in progress.
func (s *sqlxStore) GetLinkSession(ctx context.Context, kind ChannelKind, channelID string) (*LinkSession, error) {
	var session LinkSession
	err := s.db.GetContext(ctx, &session, `
        SELECT channel_kind, channel_id, state, phone, updated_at
        FROM link_sessions
        WHERE channel_kind = ? AND channel_id = ?;
    `, kind, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link session: %w", translateError(err))
	}
	return &session, nil
}

// SaveLinkSession upserts the dialogue state and stamps UpdatedAt.
func (s *sqlxStore) SaveLinkSession(ctx context.Context, session *LinkSession) error {
	session.UpdatedAt = s.now().Unix()
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO link_sessions (channel_kind, channel_id, state, phone, updated_at)
        VALUES (:channel_kind, :channel_id, :state, :phone, :updated_at)
        ON CONFLICT (channel_kind, channel_id) DO UPDATE SET
            state = excluded.state,
            phone = excluded.phone,
            updated_at = excluded.updated_at;
    `, session)
	if err != nil {
		return fmt.Errorf("failed to save link session: %w", err)
	}
	return nil
}

// DeleteLinkSession ends a linking dialogue.
func (s *sqlxStore) DeleteLinkSession(ctx context.Context, kind ChannelKind, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM link_sessions WHERE channel_kind = ? AND channel_id = ?;`, kind, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete link session: %w", err)
	}
	return nil
}

// DeleteStaleLinkSessions drops dialogues untouched since before.
func (s *sqlxStore) DeleteStaleLinkSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM link_sessions WHERE updated_at < ?;`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale link sessions: %w", err)
	}
	return result.RowsAffected()
}
