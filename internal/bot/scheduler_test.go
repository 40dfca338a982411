package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edgard/percentbot/internal/bot/tasks"
	"github.com/edgard/percentbot/internal/config"
)

func TestSchedulerStartSchedulesEnabledRegisteredTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"registered":   {Enabled: true, Schedule: "0 0 3 * * *"},
		"disabled":     {Enabled: false, Schedule: "0 0 3 * * *"},
		"unregistered": {Enabled: true, Schedule: "0 0 3 * * *"},
		"bad_schedule": {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"registered":   noop,
		"disabled":     noop,
		"bad_schedule": noop,
	}

	s, err := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, taskMap)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	require.Equal(t, []string{"registered"}, s.Scheduled())
	require.Error(t, s.Start())
}

func TestSchedulerStopWhenNotRunning(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Stop())

	require.NoError(t, s.Start())
	require.Empty(t, s.Scheduled())
	require.NoError(t, s.Stop())
}
