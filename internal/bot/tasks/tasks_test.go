package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/percentbot/internal/admin"
	"github.com/edgard/percentbot/internal/bot/tasks"
	"github.com/edgard/percentbot/internal/config"
	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/ratelimit"
)

type fakeStore struct {
	database.Store
	settings       map[string]string
	maintenanceErr error
	maintenanceRan bool
}

func (f *fakeStore) UpsertSetting(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	v, ok := f.settings[key]
	return v, ok, nil
}

func (f *fakeStore) CountRatings(context.Context) (int, error) { return 0, nil }

func (f *fakeStore) RunSQLMaintenance(context.Context) error {
	f.maintenanceRan = true
	return f.maintenanceErr
}

type fakeJokes struct {
	jokes []string
	err   error
	count int
}

func (f *fakeJokes) GenerateJokes(_ context.Context, count int) ([]string, error) {
	f.count = count
	return f.jokes, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDeps(store *fakeStore, flow *admin.Flow) tasks.TaskDeps {
	cfg := &config.Config{Gemini: config.GeminiConfig{JokeCount: 3}}
	return tasks.TaskDeps{Logger: discardLogger(), Store: store, Admin: flow, Config: cfg}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()
	store := &fakeStore{settings: map[string]string{}}
	deps := newDeps(store, admin.NewFlow(store, []int64{1}, time.Minute, nil, nil))

	withoutGemini := tasks.RegisterAllTasks(deps)
	require.Contains(t, withoutGemini, config.TaskSQLMaintenance)
	require.Contains(t, withoutGemini, config.TaskAdminSessionCleanup)
	require.NotContains(t, withoutGemini, config.TaskJokeRefresh)
	require.NotContains(t, withoutGemini, config.TaskRateLimitCleanup)

	deps.GeminiClient = &fakeJokes{}
	require.Contains(t, tasks.RegisterAllTasks(deps), config.TaskJokeRefresh)
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()
	store := &fakeStore{settings: map[string]string{}, maintenanceErr: errors.New("locked")}
	deps := newDeps(store, admin.NewFlow(store, []int64{1}, time.Minute, nil, nil))

	err := tasks.RegisterAllTasks(deps)[config.TaskSQLMaintenance](context.Background())
	require.ErrorIs(t, err, store.maintenanceErr)
	require.True(t, store.maintenanceRan)
}

func TestAdminSessionCleanupTask(t *testing.T) {
	t.Parallel()
	store := &fakeStore{settings: map[string]string{}}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	flow := admin.NewFlow(store, []int64{1}, time.Minute, func() time.Time { return clock }, nil)
	require.NoError(t, flow.BeginEdit(admin.SessionKey{ChatID: 1, UserID: 1}))

	clock = now.Add(2 * time.Minute)
	require.NoError(t, tasks.RegisterAllTasks(newDeps(store, flow))[config.TaskAdminSessionCleanup](context.Background()))
	require.Zero(t, flow.Pending())
}

func TestJokeRefreshTask(t *testing.T) {
	t.Parallel()
	store := &fakeStore{settings: map[string]string{}}
	deps := newDeps(store, admin.NewFlow(store, []int64{1}, time.Minute, nil, nil))
	writer := &fakeJokes{jokes: []string{"one", "two"}}
	deps.GeminiClient = writer

	require.NoError(t, tasks.RegisterAllTasks(deps)[config.TaskJokeRefresh](context.Background()))
	require.Equal(t, 3, writer.count)

	var stored []string
	require.NoError(t, json.Unmarshal([]byte(store.settings[database.SettingJokes]), &stored))
	require.Equal(t, []string{"one", "two"}, stored)
}

func TestJokeRefreshTaskKeepsPreviousListOnFailure(t *testing.T) {
	t.Parallel()
	store := &fakeStore{settings: map[string]string{database.SettingJokes: `["old"]`}}
	deps := newDeps(store, admin.NewFlow(store, []int64{1}, time.Minute, nil, nil))
	deps.GeminiClient = &fakeJokes{err: errors.New("quota")}

	require.Error(t, tasks.RegisterAllTasks(deps)[config.TaskJokeRefresh](context.Background()))
	require.Equal(t, `["old"]`, store.settings[database.SettingJokes])
}

func TestRateLimitCleanupTask(t *testing.T) {
	t.Parallel()
	store := &fakeStore{settings: map[string]string{}}
	deps := newDeps(store, admin.NewFlow(store, []int64{1}, time.Minute, nil, nil))
	deps.Config.RateLimit.IdleTTL = time.Minute

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	deps.Limiter = ratelimit.New(10, 1, func() time.Time { return clock })
	deps.Limiter.Allow(42)

	clock = now.Add(2 * time.Minute)
	require.NoError(t, tasks.RegisterAllTasks(deps)[config.TaskRateLimitCleanup](context.Background()))
	require.Zero(t, deps.Limiter.Tracked())
}
