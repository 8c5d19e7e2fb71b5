package database

import (
	"context"
	"errors"
	"fmt"
)

// GetOrCreateChat is idempotent. Two concurrent first calls race on the
// UNIQUE(user_id, channel_kind) constraint; the loser re-reads the winner's row.
func (s *sqlxStore) GetOrCreateChat(ctx context.Context, userID int64, kind ChannelKind, threadID string) (*Chat, error) {
	chat, err := s.FindChat(ctx, userID, kind)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	chat = &Chat{
		UserID:         userID,
		ChannelKind:    kind,
		NativeThreadID: nullString(threadID),
		CreatedAt:      s.now(),
	}
	result, err := s.db.NamedExecContext(ctx, `
        INSERT INTO chats (user_id, channel_kind, native_thread_id, created_at)
        VALUES (:user_id, :channel_kind, :native_thread_id, :created_at);
    `, chat)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ErrDuplicate) {
			s.logger.DebugContext(ctx, "Chat created concurrently, re-reading", "user_id", userID, "channel_kind", kind)
			return s.FindChat(ctx, userID, kind)
		}
		return nil, fmt.Errorf("failed to create chat for user %d: %w", userID, err)
	}
	if chat.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to get new chat id: %w", err)
	}

	s.logger.DebugContext(ctx, "Created chat", "chat_id", chat.ID, "user_id", userID, "channel_kind", kind)
	return chat, nil
}

// FindChat returns an existing chat.
func (s *sqlxStore) FindChat(ctx context.Context, userID int64, kind ChannelKind) (*Chat, error) {
	var chat Chat
	err := s.db.GetContext(ctx, &chat, `
        SELECT id, user_id, channel_kind, native_thread_id, created_at
        FROM chats
        WHERE user_id = ? AND channel_kind = ?;
    `, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s chat for user %d: %w", kind, userID, translateError(err))
	}
	return &chat, nil
}

// AppendMessage computes the next seq and inserts in a single statement, so
// the number is assigned under SQLite's write lock.
func (s *sqlxStore) AppendMessage(ctx context.Context, chatID int64, role Role, content string) (*Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("message must have a non-zero chat_id")
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("invalid message role %q", role)
	}

	msg := Message{
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	err := s.db.QueryRowxContext(ctx, `
        INSERT INTO messages (chat_id, seq, role, content, created_at)
        SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?
        FROM messages
        WHERE chat_id = ?
        RETURNING id, seq;
    `, chatID, role, content, msg.CreatedAt, chatID).Scan(&msg.ID, &msg.Seq)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", chatID, "role", role, "error", err)
		return nil, fmt.Errorf("failed to append message to chat %d: %w", chatID, translateError(err))
	}

	return &msg, nil
}

// ReadHistory returns the newest limit messages in ascending seq order.
func (s *sqlxStore) ReadHistory(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		return []Message{}, nil
	}

	messages := []Message{}
	err := s.db.SelectContext(ctx, &messages, `
        SELECT id, chat_id, seq, role, content, created_at
        FROM (
            SELECT id, chat_id, seq, role, content, created_at
            FROM messages
            WHERE chat_id = ?
            ORDER BY seq DESC
            LIMIT ?
        )
        ORDER BY seq ASC;
    `, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history of chat %d: %w", chatID, err)
	}
	return messages, nil
}
