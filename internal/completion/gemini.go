package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/edgard/sonnik/internal/prompt"
)

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

// Gemini calls Models.GenerateContent of the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
	config genai.GenerateContentConfig
}

// NewGemini creates the provider.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	return &Gemini{
		client: client,
		model:  cfg.Model,
		config: genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: cfg.MaxTokens,
		},
	}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, msgs []prompt.Message) (string, error) {
	system, contents := toGenai(msgs)

	cfg := g.config
	if system != nil {
		cfg.SystemInstruction = system
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &cfg)
	if err != nil {
		if statusErr := asStatusError(err); statusErr != nil {
			return "", statusErr
		}
		if IsUnavailable(err) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("gemini request blocked: %v", fb.BlockReason)
	}

	answer := resp.Text()
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// toGenai splits the system entry off as a SystemInstruction and maps the
// assistant role onto Gemini's "model".
func toGenai(msgs []prompt.Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case prompt.RoleSystem:
			system = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
		case prompt.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return system, contents
}

// asStatusError converts a genai.APIError, returned by value or by pointer
// depending on the SDK path, into a StatusError.
func asStatusError(err error) *StatusError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Code: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return nil
}
