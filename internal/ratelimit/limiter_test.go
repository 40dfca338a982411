package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgard/percentbot/internal/ratelimit"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestAllowPerUser(t *testing.T) {
	t.Parallel()
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := ratelimit.New(6, 2, c.Now)

	require.True(t, l.Allow(1))
	require.True(t, l.Allow(1))
	require.False(t, l.Allow(1))
	require.True(t, l.Allow(2), "buckets are per user")

	c.now = c.now.Add(11 * time.Second)
	require.True(t, l.Allow(1))
	require.False(t, l.Allow(1))
}

func TestDisabledLimiter(t *testing.T) {
	t.Parallel()
	l := ratelimit.New(0, 0, nil)
	for range 100 {
		require.True(t, l.Allow(1))
	}
	require.Zero(t, l.Tracked())
}

func TestPrune(t *testing.T) {
	t.Parallel()
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := ratelimit.New(60, 5, c.Now)

	l.Allow(1)
	c.now = c.now.Add(20 * time.Minute)
	l.Allow(2)

	require.Equal(t, 1, l.Prune(10*time.Minute))
	require.Equal(t, 1, l.Tracked())
}
