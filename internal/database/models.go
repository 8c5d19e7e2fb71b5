package database

import (
	"database/sql"
	"time"
)

// ChannelKind names a front-end through which a person reaches the service.
type ChannelKind string

// Known channel kinds.
const (
	ChannelWeb      ChannelKind = "web"
	ChannelTelegram ChannelKind = "telegram"
)

// Role is the author of a stored message.
type Role string

// Message roles. The model-only "system" role is never persisted.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BirthDateLayout is the storage layout of users.birth_date.
const BirthDateLayout = "2006-01-02"

// User is one human, possibly reachable through several channels.
type User struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Phone        sql.NullString `db:"phone"`
	BirthDate    sql.NullString `db:"birth_date"`
	PasswordHash sql.NullString `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
}

// NewUser carries the fields of a user being created. Empty strings are
// stored as NULL.
type NewUser struct {
	Name         string
	Phone        string
	BirthDate    string
	PasswordHash string
}

// Identity binds a channel-specific identifier to a user.
type Identity struct {
	ChannelKind ChannelKind `db:"channel_kind"`
	ChannelID   string      `db:"channel_id"`
	UserID      int64       `db:"user_id"`
}

// Chat is the single conversation a user has on one channel.
type Chat struct {
	ID             int64          `db:"id"`
	UserID         int64          `db:"user_id"`
	ChannelKind    ChannelKind    `db:"channel_kind"`
	NativeThreadID sql.NullString `db:"native_thread_id"`
	CreatedAt      time.Time      `db:"created_at"`
}

// Message is one immutable turn of a chat. Seq is strictly increasing within
// a chat and defines the order.
type Message struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Seq       int64     `db:"seq"`
	Role      Role      `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// WebSession is a logged-in browser. Times are unix seconds.
type WebSession struct {
	Token     string `db:"token"`
	UserID    int64  `db:"user_id"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// LinkSession is the persisted progress of a channel-linking dialogue.
type LinkSession struct {
	ChannelKind ChannelKind `db:"channel_kind"`
	ChannelID   string      `db:"channel_id"`
	State       string      `db:"state"`
	Phone       string      `db:"phone"`
	UpdatedAt   int64       `db:"updated_at"`
}
