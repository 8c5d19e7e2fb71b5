package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/dialog"
)

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type userInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date,omitempty"`
}

type historyEntry struct {
	Role      database.Role `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

func toUserInfo(u *database.User) userInfo {
	return userInfo{ID: u.ID, Name: u.Name, Phone: u.Phone.String, BirthDate: u.BirthDate.String}
}

// statusFor maps a dialog error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dialog.ErrEmptyInput), errors.Is(err, dialog.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, dialog.ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, dialog.ErrInvalidCredential), errors.Is(err, dialog.ErrIdentityNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	s.errorResponse(w, code, s.svc.UserMessage(err))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg dialog.Registration
	if !s.decode(w, r, &reg) {
		return
	}

	userID, err := s.svc.RegisterUser(r.Context(), reg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.startSession(r.Context(), w, userID); err != nil {
		s.fail(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": s.messages.RegisterSuccess,
		"user_id": userID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.svc.Authenticate(r.Context(), database.ChannelWeb, req.Phone, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.startSession(r.Context(), w, user.ID); err != nil {
		s.fail(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": s.messages.LoginSuccess,
		"user":    toUserInfo(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(r.Context(), w, r)
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// currentUser loads the session's user; on failure the response is written.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	user, err := s.svc.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, dialog.ErrIdentityNotFound) {
			s.endSession(r.Context(), w, r)
		}
		s.fail(w, r, err)
		return nil, false
	}
	return user, true
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	reply, err := s.svc.HandleTurn(r.Context(), dialog.Turn{
		Channel:   database.ChannelWeb,
		ChannelID: user.Phone.String,
		Utterance: req.Message,
	})
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "Turn failed", "user_id", user.ID, "error", err)
		}
		s.errorResponse(w, code, reply)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": reply,
	})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.History(r.Context(), userIDFrom(r.Context()), database.ChannelWeb, s.historyLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	entries := make([]historyEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, historyEntry{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": entries,
	})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserInfo(user),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"database":  "ok",
	}
	if s.stats != nil {
		body["completion"] = s.stats.Stats()
	}

	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Health check failed", "error", err)
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, body)
}
