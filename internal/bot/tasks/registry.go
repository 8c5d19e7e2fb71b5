package tasks

import (
	"context"
	"time"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// DefaultLinkSessionTTL is used when TaskDeps.LinkSessionTTL is zero.
const DefaultLinkSessionTTL = time.Hour

// RegisterAllTasks returns every task keyed by the name used in the
// scheduler section of the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.LinkSessionTTL <= 0 {
		deps.LinkSessionTTL = DefaultLinkSessionTTL
	}

	tasks := make(map[string]ScheduledTaskFunc)
	tasks["sql_maintenance"] = newSQLMaintenanceTask(deps)
	tasks["session_cleanup"] = newSessionCleanupTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
