package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/edgard/sonnik/internal/prompt"
)

func TestToGenai(t *testing.T) {
	t.Parallel()

	system, contents := toGenai([]prompt.Message{
		{Role: prompt.RoleSystem, Content: "persona"},
		{Role: prompt.RoleUser, Content: "сон 1"},
		{Role: prompt.RoleAssistant, Content: "ответ 1"},
		{Role: prompt.RoleUser, Content: "сон 2"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "persona", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "ответ 1", contents[1].Parts[0].Text)
	assert.Equal(t, "сон 2", contents[2].Parts[0].Text)
}

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Толкование"}]},"finishReason":"STOP"}]}`))
	}))
	t.Cleanup(srv.Close)

	g, err := NewGemini(context.Background(), GeminiConfig{
		APIKey: "key", Model: "gemini-test", Temperature: 0.7, MaxTokens: 800, BaseURL: srv.URL + "/",
	})
	require.NoError(t, err)

	answer, err := g.Generate(context.Background(), []prompt.Message{
		{Role: prompt.RoleSystem, Content: "persona"},
		{Role: prompt.RoleUser, Content: "сон"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Толкование", answer)
	assert.Contains(t, body, "systemInstruction")
	assert.Contains(t, body, "contents")
}

func TestNewGeminiRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGemini(context.Background(), GeminiConfig{Model: "m"})
	assert.Error(t, err)
}
