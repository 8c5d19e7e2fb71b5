package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithEnvKey(t *testing.T) {
	t.Setenv("SONNIK_AI_API_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, DefaultAIProvider, cfg.AI.Provider)
	assert.Equal(t, DefaultAIModel, cfg.AI.Model)
	assert.Equal(t, DefaultHistoryWindow, cfg.Conversation.HistoryWindow)
	assert.Equal(t, DefaultAITimeout, cfg.AI.Timeout)
	assert.True(t, cfg.Web.Enabled)
	assert.False(t, cfg.Telegram.Enabled)
	assert.Equal(t, DefaultMessages.GatewayUnavailable, cfg.Messages.GatewayUnavailable)
	assert.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")
	assert.Contains(t, cfg.Scheduler.Tasks, "session_cleanup")
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: gemini
  api_key: from-file
  model: gemini-2.0-flash
  timeout: 45s
conversation:
  history_window: 10
telegram:
  enabled: true
  token: tg-token
web:
  enabled: false
scheduler:
  tasks:
    sql_maintenance:
      enabled: false
      schedule: ""
`)
	t.Setenv("SONNIK_AI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.Conversation.HistoryWindow)
	assert.True(t, cfg.Telegram.Enabled)
	assert.Equal(t, "tg-token", cfg.Telegram.Token)
	assert.False(t, cfg.Web.Enabled)
	require.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")
	assert.False(t, cfg.Scheduler.Tasks["sql_maintenance"].Enabled)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing api key",
			body: "ai:\n  api_key: \"\"\n",
		},
		{
			name: "unknown provider",
			body: "ai:\n  api_key: k\n  provider: llama\n",
		},
		{
			name: "telegram without token",
			body: "ai:\n  api_key: k\ntelegram:\n  enabled: true\n",
		},
		{
			name: "zero history window",
			body: "ai:\n  api_key: k\nconversation:\n  history_window: 0\n",
		},
		{
			name: "no front-end",
			body: "ai:\n  api_key: k\nweb:\n  enabled: false\n",
		},
		{
			name: "bad log level",
			body: "ai:\n  api_key: k\nlogger:\n  level: verbose\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "ai: [unterminated"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadGeminiProviderDefaults(t *testing.T) {
	t.Setenv("SONNIK_AI_API_KEY", "k")
	t.Setenv("SONNIK_AI_PROVIDER", "gemini")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultGeminiModel, cfg.AI.Model)
	assert.Empty(t, cfg.AI.BaseURL)
}

func TestLoadExampleConfig(t *testing.T) {
	t.Setenv("SONNIK_AI_API_KEY", "k")

	cfg, err := Load(filepath.Join("..", "..", "config.yaml.example"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAIModel, cfg.AI.Model)
	assert.Equal(t, 30*24*time.Hour, cfg.Web.SessionTTL)
	assert.Len(t, cfg.Scheduler.Tasks, 2)
}
