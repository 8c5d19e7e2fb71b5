package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/edgard/sonnik/internal/logger"
	"github.com/edgard/sonnik/internal/prompt"
)

// OpenRouterConfig configures an OpenAI-compatible chat completions endpoint.
type OpenRouterConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	// Referer and Title identify the application to OpenRouter.
	Referer string
	Title   string
}

// OpenRouter calls POST {BaseURL}/chat/completions.
type OpenRouter struct {
	cfg    OpenRouterConfig
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenRouter creates the provider. A nil client means http.DefaultClient;
// the gateway's context carries the timeout.
func NewOpenRouter(cfg OpenRouterConfig, client *http.Client) *OpenRouter {
	if client == nil {
		client = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenRouter{cfg: cfg, client: client}
}

// Name implements Provider.
func (o *OpenRouter) Name() string { return "openrouter" }

// Generate implements Provider.
func (o *OpenRouter) Generate(ctx context.Context, msgs []prompt.Message) (string, error) {
	body := chatRequest{
		Model:       o.cfg.Model,
		Messages:    make([]chatMessage, 0, len(msgs)),
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	}
	for _, m := range msgs {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", o.cfg.Referer)
	}
	if o.cfg.Title != "" {
		req.Header.Set("X-Title", o.cfg.Title)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Message: apiErrorMessage(raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", &StatusError{Code: resp.StatusCode, Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyAnswer
	}
	return parsed.Choices[0].Message.Content, nil
}

// apiErrorMessage extracts error.message from an error body, falling back to
// a prefix of the raw body.
func apiErrorMessage(raw []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return logger.Preview(strings.TrimSpace(string(raw)), 200)
}
