package tasks

import (
	"context"
	"errors"
	"fmt"
)

// newSessionCleanupTask removes expired web logins and link dialogues that
// were abandoned half way.
func newSessionCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_cleanup")

	return func(ctx context.Context) error {
		now := deps.Now()

		webRemoved, webErr := deps.Store.DeleteExpiredWebSessions(ctx, now)
		if webErr != nil {
			log.ErrorContext(ctx, "Failed to delete expired web sessions", "error", webErr)
			webErr = fmt.Errorf("web sessions: %w", webErr)
		}

		linkRemoved, linkErr := deps.Store.DeleteStaleLinkSessions(ctx, now.Add(-deps.LinkSessionTTL))
		if linkErr != nil {
			log.ErrorContext(ctx, "Failed to delete stale link sessions", "error", linkErr)
			linkErr = fmt.Errorf("link sessions: %w", linkErr)
		}

		if err := errors.Join(webErr, linkErr); err != nil {
			return fmt.Errorf("session cleanup failed: %w", err)
		}

		log.InfoContext(ctx, "Session cleanup completed", "web_sessions", webRemoved, "link_sessions", linkRemoved)
		return nil
	}
}
