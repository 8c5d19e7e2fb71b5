// Package completion sends composed prompts to a remote language model and
// always hands back something that can be shown to the user.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/edgard/sonnik/internal/prompt"
	"github.com/edgard/sonnik/internal/text"
)

var (
	// ErrUnavailable marks transport failures and timeouts.
	ErrUnavailable = errors.New("completion service unavailable")
	// ErrEmptyAnswer is returned by providers when the model produced no text.
	ErrEmptyAnswer = errors.New("empty completion")
)

// StatusError is a non-success answer from the model API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion API returned status %d: %s", e.Code, e.Message)
}

// Provider performs exactly one model call.
type Provider interface {
	Name() string
	Generate(ctx context.Context, msgs []prompt.Message) (string, error)
}

// Fallbacks are the texts returned in place of a model answer.
type Fallbacks struct {
	// Error is used when the API answered with a failure or no text.
	Error string
	// Unavailable is used when the API could not be reached in time.
	Unavailable string
}

// Stats counts gateway outcomes since start.
type Stats struct {
	Provider    string    `json:"provider"`
	Requests    uint64    `json:"requests"`
	Failures    uint64    `json:"failures"`
	Unavailable uint64    `json:"unavailable"`
	LastFailure time.Time `json:"last_failure,omitzero"`
}

// Gateway wraps a Provider with a timeout, failure accounting and fallback
// texts. It never retries.
type Gateway struct {
	provider  Provider
	timeout   time.Duration
	fallbacks Fallbacks
	log       *slog.Logger

	requests    atomic.Uint64
	failures    atomic.Uint64
	unavailable atomic.Uint64
	lastFailure atomic.Int64
}

// NewGateway creates a gateway around provider.
func NewGateway(provider Provider, timeout time.Duration, fallbacks Fallbacks, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		provider:  provider,
		timeout:   timeout,
		fallbacks: fallbacks,
		log:       log.With("component", "completion_gateway", "provider", provider.Name()),
	}
}

// Complete returns the model's answer, or a fallback text when the call
// fails, times out or yields nothing.
func (g *Gateway) Complete(ctx context.Context, msgs []prompt.Message) string {
	g.requests.Add(1)

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := g.provider.Generate(callCtx, msgs)
	if err == nil {
		answer = text.Clean(answer)
		if answer == "" {
			err = ErrEmptyAnswer
		}
	}
	if err != nil {
		return g.fail(ctx, err, time.Since(start))
	}

	g.log.DebugContext(ctx, "Completion succeeded", "messages", len(msgs), "duration", time.Since(start))
	return answer
}

func (g *Gateway) fail(ctx context.Context, err error, elapsed time.Duration) string {
	g.lastFailure.Store(time.Now().UnixMilli())

	if IsUnavailable(err) {
		g.unavailable.Add(1)
		g.log.ErrorContext(ctx, "Completion service unavailable", "error", err, "duration", elapsed)
		return g.fallbacks.Unavailable
	}

	g.failures.Add(1)
	g.log.ErrorContext(ctx, "Completion failed", "error", err, "duration", elapsed)
	return g.fallbacks.Error
}

// Stats returns a snapshot of the counters.
func (g *Gateway) Stats() Stats {
	s := Stats{
		Provider:    g.provider.Name(),
		Requests:    g.requests.Load(),
		Failures:    g.failures.Load(),
		Unavailable: g.unavailable.Load(),
	}
	if ms := g.lastFailure.Load(); ms != 0 {
		s.LastFailure = time.UnixMilli(ms).UTC()
	}
	return s
}

// IsFallback reports whether answer is one of the gateway's fallback texts.
func (g *Gateway) IsFallback(answer string) bool {
	return answer == g.fallbacks.Error || answer == g.fallbacks.Unavailable
}

// IsUnavailable reports whether err means the model could not be reached,
// as opposed to the model answering with an error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
