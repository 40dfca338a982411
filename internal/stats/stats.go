// Package stats aggregates recorded ratings over trailing time windows.
package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/edgard/percentbot/internal/database"
)

// ErrInvalidWindow is returned by Window for negative window sizes.
var ErrInvalidWindow = errors.New("window must not be negative")

// RatingReader is the subset of database.Store the aggregator needs.
type RatingReader interface {
	RatingStatsSince(ctx context.Context, since time.Time) (database.RatingStats, error)
	RatingStatsAllTime(ctx context.Context) (database.RatingStats, error)
}

// Window identifies a statistics window. Days == 0 means all-time.
type Window struct {
	Days int
}

// AllTime is the unbounded window.
var AllTime = Window{}

// DefaultWindows are the windows shown to users: a week, a month, a year
// and all-time.
var DefaultWindows = []Window{{Days: 7}, {Days: 30}, {Days: 365}, AllTime}

// IsAllTime reports whether w is unbounded.
func (w Window) IsAllTime() bool {
	return w.Days == 0
}

// WindowStats is the aggregate for one window.
type WindowStats struct {
	Window  Window
	Count   int
	Average float64
}

// Aggregator computes averages over the rating log.
type Aggregator struct {
	ratings RatingReader
	now     func() time.Time
}

// NewAggregator creates an Aggregator. now may be nil to use time.Now.
func NewAggregator(ratings RatingReader, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{ratings: ratings, now: now}
}

// AverageOver returns the mean value of ratings recorded within the last
// windowDays days, rounded to one decimal. It is 0 when there are none, for
// any window size; negative windows are treated as 0.
func (a *Aggregator) AverageOver(ctx context.Context, windowDays int) (float64, error) {
	windowDays = max(windowDays, 0)
	rs, err := a.ratings.RatingStatsSince(ctx, a.now().AddDate(0, 0, -windowDays))
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return average(rs), nil
}

// AverageAllTime returns the rounded mean over every rating.
func (a *Aggregator) AverageAllTime(ctx context.Context) (float64, error) {
	ws, err := a.Window(ctx, AllTime)
	if err != nil {
		return 0, err
	}
	return ws.Average, nil
}

// Window aggregates a single window.
func (a *Aggregator) Window(ctx context.Context, w Window) (WindowStats, error) {
	if w.Days < 0 {
		return WindowStats{}, fmt.Errorf("%w: got %d", ErrInvalidWindow, w.Days)
	}

	var (
		rs  database.RatingStats
		err error
	)
	if w.IsAllTime() {
		rs, err = a.ratings.RatingStatsAllTime(ctx)
	} else {
		rs, err = a.ratings.RatingStatsSince(ctx, a.now().AddDate(0, 0, -w.Days))
	}
	if err != nil {
		return WindowStats{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return WindowStats{Window: w, Count: rs.Count, Average: average(rs)}, nil
}

func average(rs database.RatingStats) float64 {
	if rs.Count == 0 {
		return 0
	}
	return Round1(rs.Average)
}

// Summary aggregates each of windows in order.
func (a *Aggregator) Summary(ctx context.Context, windows []Window) ([]WindowStats, error) {
	out := make([]WindowStats, 0, len(windows))
	for _, w := range windows {
		ws, err := a.Window(ctx, w)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, nil
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
