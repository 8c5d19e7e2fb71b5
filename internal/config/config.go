// Package config provides configuration loading, validation, and defaults
// for Sonnik. Values come from a YAML file, SONNIK_* environment variables
// and the defaults in defaults.go, in increasing order of precedence:
// defaults < file < environment.
package config

import "time"

// Config defines the application configuration for all components.
type Config struct {
	Logger       LoggerConfig       `mapstructure:"logger"`
	Database     DatabaseConfig     `mapstructure:"database"`
	AI           AIConfig           `mapstructure:"ai"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	Web          WebConfig          `mapstructure:"web"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Messages     MessagesConfig     `mapstructure:"messages"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig points at the SQLite file holding users, chats and messages.
type DatabaseConfig struct {
	Path        string        `mapstructure:"path"         validate:"required"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" validate:"min=0,max=1m"`
}

// AIConfig configures the completion gateway.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"      validate:"required,oneof=openrouter gemini"`
	APIKey      string        `mapstructure:"api_key"       validate:"required"`
	BaseURL     string        `mapstructure:"base_url"      validate:"required_if=Provider openrouter,omitempty,url"`
	Model       string        `mapstructure:"model"         validate:"required"`
	Temperature float32       `mapstructure:"temperature"   validate:"min=0,max=2"`
	MaxTokens   int32         `mapstructure:"max_tokens"    validate:"min=1,max=32000"`
	Timeout     time.Duration `mapstructure:"timeout"       validate:"min=1s,max=10m"`
	Referer     string        `mapstructure:"referer"`
	Title       string        `mapstructure:"title"`
	// SystemPrompt overrides the built-in interpreter persona template.
	SystemPrompt string `mapstructure:"system_prompt"`
}

// ConversationConfig tunes how much history is replayed to the model.
type ConversationConfig struct {
	HistoryWindow int `mapstructure:"history_window" validate:"min=1,max=20"`
	// DisplayHistoryLimit caps the transcript returned to the web UI.
	DisplayHistoryLimit int `mapstructure:"display_history_limit" validate:"min=1,max=200"`
}

// TelegramConfig enables the Telegram front-end.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token" validate:"required_if=Enabled true"`
}

// WebConfig enables the HTTP front-end.
type WebConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Address      string        `mapstructure:"address"       validate:"required_if=Enabled true"`
	CookieName   string        `mapstructure:"cookie_name"   validate:"required"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"   validate:"min=1m"`
}

// SchedulerConfig lists periodic maintenance tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig is the schedule of a single task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-facing text. All front-ends are chat-like,
// so failures are always reported with one of these strings.
type MessagesConfig struct {
	Welcome string `mapstructure:"welcome" validate:"required"`
	Help    string `mapstructure:"help"    validate:"required"`
	About   string `mapstructure:"about"   validate:"required"`

	EmptyInput         string `mapstructure:"empty_input"         validate:"required"`
	DuplicateIdentity  string `mapstructure:"duplicate_identity"  validate:"required"`
	InvalidCredential  string `mapstructure:"invalid_credential"  validate:"required"`
	IdentityNotFound   string `mapstructure:"identity_not_found"  validate:"required"`
	InvalidProfile     string `mapstructure:"invalid_profile"     validate:"required"`
	GatewayError       string `mapstructure:"gateway_error"       validate:"required"`
	GatewayUnavailable string `mapstructure:"gateway_unavailable" validate:"required"`
	GeneralError       string `mapstructure:"general_error"       validate:"required"`

	LinkAskPhone    string `mapstructure:"link_ask_phone"    validate:"required"`
	LinkAskPassword string `mapstructure:"link_ask_password" validate:"required"`
	LinkSuccess     string `mapstructure:"link_success"      validate:"required"`
	LinkCancelled   string `mapstructure:"link_cancelled"    validate:"required"`
	LinkNothing     string `mapstructure:"link_nothing"      validate:"required"`

	Unauthorized    string `mapstructure:"unauthorized"     validate:"required"`
	RegisterSuccess string `mapstructure:"register_success" validate:"required"`
	LoginSuccess    string `mapstructure:"login_success"    validate:"required"`
}
