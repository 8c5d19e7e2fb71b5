// Package web serves the JSON API used by the browser front-end: sign-up,
// login and the dream chat of the "web" channel.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/edgard/sonnik/internal/completion"
	"github.com/edgard/sonnik/internal/config"
	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/dialog"
	"github.com/edgard/sonnik/internal/logger"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// StatsSource reports completion gateway counters for /health.
type StatsSource interface {
	Stats() completion.Stats
}

// Deps are the collaborators of a Server.
type Deps struct {
	Config       config.WebConfig
	Messages     config.MessagesConfig
	HistoryLimit int
	Service      *dialog.Service
	Store        database.Store
	Stats        StatsSource
	Logger       *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	cfg          config.WebConfig
	messages     config.MessagesConfig
	historyLimit int
	svc          *dialog.Service
	store        database.Store
	stats        StatsSource
	logger       *slog.Logger
	now          func() time.Time
	server       *http.Server
}

// NewServer creates a server; nothing listens until Run.
func NewServer(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:          deps.Config,
		messages:     deps.Messages,
		historyLimit: deps.HistoryLimit,
		svc:          deps.Service,
		store:        deps.Store,
		stats:        deps.Stats,
		logger:       log.With("component", "web"),
		now:          time.Now,
	}
}

// Handler returns the routed API, wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("POST /api/send_message", s.requireSession(s.handleSendMessage))
	mux.HandleFunc("GET /api/chat_history", s.requireSession(s.handleChatHistory))
	mux.HandleFunc("GET /api/user_info", s.requireSession(s.handleUserInfo))

	mux.HandleFunc("GET /health", s.handleHealth)

	return logger.HTTPMiddleware(s.logger, mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting web server", "address", s.cfg.Address)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received, stopping web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error stopping web server", "error", err)
		return err
	}
	s.logger.Info("Web server stopped.")
	return nil
}

// writeJSON encodes v as JSON to w, logging any errors at debug level.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write JSON response", "error", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]any{
		"success": false,
		"error":   message,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
