package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/logger"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasks.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil)
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()
	tasks := RegisterAllTasks(TaskDeps{Logger: logger.Discard(), Store: newTestStore(t)})
	assert.Len(t, tasks, 2)
	assert.Contains(t, tasks, "sql_maintenance")
	assert.Contains(t, tasks, "session_cleanup")
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()
	tasks := RegisterAllTasks(TaskDeps{Logger: logger.Discard(), Store: newTestStore(t)})
	require.NoError(t, tasks["sql_maintenance"](context.Background()))
}

func TestSessionCleanupTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	user, err := store.CreateUser(ctx, database.NewUser{Name: "Anna", Phone: "+70000000001"}, database.ChannelWeb, "+70000000001")
	require.NoError(t, err)

	require.NoError(t, store.CreateWebSession(ctx, &database.WebSession{
		Token: "expired", UserID: user.ID, CreatedAt: now.Add(-48 * time.Hour).Unix(), ExpiresAt: now.Add(-time.Hour).Unix(),
	}))
	require.NoError(t, store.CreateWebSession(ctx, &database.WebSession{
		Token: "live", UserID: user.ID, CreatedAt: now.Unix(), ExpiresAt: now.Add(time.Hour).Unix(),
	}))
	require.NoError(t, store.SaveLinkSession(ctx, &database.LinkSession{
		ChannelKind: database.ChannelTelegram, ChannelID: "1", State: "awaiting_phone", UpdatedAt: now.Add(-2 * time.Hour).Unix(),
	}))
	require.NoError(t, store.SaveLinkSession(ctx, &database.LinkSession{
		ChannelKind: database.ChannelTelegram, ChannelID: "2", State: "awaiting_phone", UpdatedAt: now.Add(-time.Minute).Unix(),
	}))

	tasks := RegisterAllTasks(TaskDeps{
		Logger:         logger.Discard(),
		Store:          store,
		LinkSessionTTL: time.Hour,
		Now:            func() time.Time { return now },
	})
	require.NoError(t, tasks["session_cleanup"](ctx))

	_, err = store.GetWebSession(ctx, "expired", now.Add(-2*time.Hour))
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = store.GetWebSession(ctx, "live", now)
	assert.NoError(t, err)

	_, err = store.GetLinkSession(ctx, database.ChannelTelegram, "1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = store.GetLinkSession(ctx, database.ChannelTelegram, "2")
	assert.NoError(t, err)
}
