// Package tasks implements the scheduled maintenance jobs of Sonnik.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/sonnik/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	// LinkSessionTTL is how long an abandoned link dialogue is kept.
	LinkSessionTTL time.Duration
	Now            func() time.Time
}
