package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/sonnik/internal/prompt"
)

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) *OpenRouter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenRouter(OpenRouterConfig{
		BaseURL:     srv.URL + "/api/v1/",
		APIKey:      "key",
		Model:       "deepseek/deepseek-chat-v3-0324",
		Temperature: 0.7,
		MaxTokens:   1000,
		Referer:     "https://dream-interpreter.com",
		Title:       "ИИ Сонник",
	}, srv.Client())
}

func TestOpenRouterGenerate(t *testing.T) {
	t.Parallel()

	var got chatRequest
	var headers http.Header
	o := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Толкование"}}]}`))
	})

	answer, err := o.Generate(context.Background(), []prompt.Message{
		{Role: prompt.RoleSystem, Content: "persona"},
		{Role: prompt.RoleUser, Content: "сон"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Толкование", answer)

	assert.Equal(t, "Bearer key", headers.Get("Authorization"))
	assert.Equal(t, "https://dream-interpreter.com", headers.Get("HTTP-Referer"))
	assert.Equal(t, "ИИ Сонник", headers.Get("X-Title"))

	assert.Equal(t, "deepseek/deepseek-chat-v3-0324", got.Model)
	assert.EqualValues(t, 1000, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "сон", got.Messages[1].Content)
}

func TestOpenRouterErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-success status", func(t *testing.T) {
		t.Parallel()
		o := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","code":429}}`))
		})
		_, err := o.Generate(context.Background(), nil)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
		assert.Equal(t, "rate limited", statusErr.Message)
		assert.False(t, IsUnavailable(err))
	})

	t.Run("no choices", func(t *testing.T) {
		t.Parallel()
		o := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})
		_, err := o.Generate(context.Background(), nil)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		o := NewOpenRouter(OpenRouterConfig{BaseURL: srv.URL, Model: "m"}, nil)

		_, err := o.Generate(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable))
	})
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json error", `{"error":{"message":"bad key"}}`, "bad key"},
		{"plain body", "  upstream down  ", "upstream down"},
		{"short cyrillic body", "ошибка", "ошибка"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, apiErrorMessage([]byte(tt.raw)))
		})
	}

	t.Run("long cyrillic body stays valid utf8", func(t *testing.T) {
		t.Parallel()
		got := apiErrorMessage([]byte(strings.Repeat("я", 300)))
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, 200, utf8.RuneCountInString(got))
	})
}
