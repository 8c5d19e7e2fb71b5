package completion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edgard/sonnik/internal/config"
)

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.AIConfig, client *http.Client) (Provider, error) {
	switch cfg.Provider {
	case "openrouter":
		return NewOpenRouter(OpenRouterConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Referer:     cfg.Referer,
			Title:       cfg.Title,
		}, client), nil
	case "gemini":
		return NewGemini(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			BaseURL:     cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
