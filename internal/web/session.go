package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/edgard/sonnik/internal/database"
)

type ctxKey int

const userIDKey ctxKey = iota

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// startSession persists a fresh session for userID and sets its cookie.
func (s *Server) startSession(ctx context.Context, w http.ResponseWriter, userID int64) error {
	now := s.now()
	sess := &database.WebSession{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.cfg.SessionTTL).Unix(),
	}
	if err := s.store.CreateWebSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to create web session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  now.Add(s.cfg.SessionTTL),
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// endSession forgets the request's session, if any, and expires the cookie.
func (s *Server) endSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
		if err := s.store.DeleteWebSession(ctx, c.Value); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete web session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireSession rejects requests without a live session and passes the
// session's user id to next through the request context.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cfg.CookieName)
		if err != nil || c.Value == "" {
			s.errorResponse(w, http.StatusUnauthorized, s.messages.Unauthorized)
			return
		}

		sess, err := s.store.GetWebSession(r.Context(), c.Value, s.now())
		if errors.Is(err, database.ErrNotFound) {
			s.endSession(r.Context(), w, r)
			s.errorResponse(w, http.StatusUnauthorized, s.messages.Unauthorized)
			return
		}
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to load web session", "error", err)
			s.errorResponse(w, http.StatusInternalServerError, s.svc.UserMessage(err))
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, sess.UserID)))
	}
}
