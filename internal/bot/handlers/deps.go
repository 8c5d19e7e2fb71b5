package handlers

import (
	"log/slog"

	"github.com/edgard/sonnik/internal/config"
	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/dialog"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Service  *dialog.Service
	Sessions database.SessionStore
}
