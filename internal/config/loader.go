package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SONNIK_AI_API_KEY.
const EnvPrefix = "SONNIK"

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Load reads configuration from the YAML file at path (optional; a missing
// file means defaults plus environment), applies SONNIK_* overrides and
// validates the result.
func Load(path string) (*Config, error) {
	startTime := time.Now()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrConfiguration, path, err)
		}
		slog.Info("configuration file not found, using defaults and environment", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	if len(cfg.Scheduler.Tasks) == 0 {
		cfg.Scheduler.Tasks = DefaultTasks
	}
	applyProviderDefaults(&cfg.AI)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	slog.Info("configuration loaded successfully",
		"ai_provider", cfg.AI.Provider,
		"ai_model", cfg.AI.Model,
		"db_path", cfg.Database.Path,
		"telegram_enabled", cfg.Telegram.Enabled,
		"web_enabled", cfg.Web.Enabled,
		"duration_ms", time.Since(startTime).Milliseconds())
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal, including keys that have no sensible default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.busy_timeout", DefaultBusyTimeout)

	v.SetDefault("ai.provider", DefaultAIProvider)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", DefaultAIBaseURL)
	v.SetDefault("ai.model", DefaultAIModel)
	v.SetDefault("ai.temperature", DefaultAITemperature)
	v.SetDefault("ai.max_tokens", DefaultAIMaxTokens)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.referer", DefaultAIReferer)
	v.SetDefault("ai.title", DefaultAITitle)
	v.SetDefault("ai.system_prompt", "")

	v.SetDefault("conversation.history_window", DefaultHistoryWindow)
	v.SetDefault("conversation.display_history_limit", DefaultDisplayHistoryLimit)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")

	v.SetDefault("web.enabled", true)
	v.SetDefault("web.address", DefaultWebAddress)
	v.SetDefault("web.cookie_name", DefaultWebCookieName)
	v.SetDefault("web.secure_cookie", false)
	v.SetDefault("web.session_ttl", DefaultWebSessionTTL)

	m := DefaultMessages
	v.SetDefault("messages.welcome", m.Welcome)
	v.SetDefault("messages.help", m.Help)
	v.SetDefault("messages.about", m.About)
	v.SetDefault("messages.empty_input", m.EmptyInput)
	v.SetDefault("messages.duplicate_identity", m.DuplicateIdentity)
	v.SetDefault("messages.invalid_credential", m.InvalidCredential)
	v.SetDefault("messages.identity_not_found", m.IdentityNotFound)
	v.SetDefault("messages.invalid_profile", m.InvalidProfile)
	v.SetDefault("messages.gateway_error", m.GatewayError)
	v.SetDefault("messages.gateway_unavailable", m.GatewayUnavailable)
	v.SetDefault("messages.general_error", m.GeneralError)
	v.SetDefault("messages.link_ask_phone", m.LinkAskPhone)
	v.SetDefault("messages.link_ask_password", m.LinkAskPassword)
	v.SetDefault("messages.link_success", m.LinkSuccess)
	v.SetDefault("messages.link_cancelled", m.LinkCancelled)
	v.SetDefault("messages.link_nothing", m.LinkNothing)
	v.SetDefault("messages.unauthorized", m.Unauthorized)
	v.SetDefault("messages.register_success", m.RegisterSuccess)
	v.SetDefault("messages.login_success", m.LoginSuccess)
}

// applyProviderDefaults swaps the OpenRouter endpoint and model defaults for
// Gemini ones when the gemini provider is chosen without overriding them.
func applyProviderDefaults(ai *AIConfig) {
	if ai.Provider != "gemini" {
		return
	}
	if ai.BaseURL == DefaultAIBaseURL {
		ai.BaseURL = ""
	}
	if ai.Model == DefaultAIModel {
		ai.Model = DefaultGeminiModel
	}
}
