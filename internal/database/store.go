package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetSetting returns the value stored under key. found is false when
	// the key was never set.
	GetSetting(ctx context.Context, key string) (value string, found bool, err error)

	// UpsertSetting inserts or replaces the value stored under key.
	UpsertSetting(ctx context.Context, key, value string) error

	// InitializeSettings inserts each default whose key is absent. Existing
	// values are never overwritten.
	InitializeSettings(ctx context.Context, defaults map[string]string) error

	// AppendRating records a rating with a server-assigned timestamp.
	AppendRating(ctx context.Context, rating *Rating) error

	// CountRatings returns the total number of recorded ratings.
	CountRatings(ctx context.Context) (int, error)

	// RatingStatsSince aggregates ratings with timestamp >= since.
	RatingStatsSince(ctx context.Context, since time.Time) (RatingStats, error)

	// RatingStatsAllTime aggregates every rating ever recorded.
	RatingStatsAllTime(ctx context.Context) (RatingStats, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// StoreOption customizes a Store created by NewStore.
type StoreOption func(*sqlxStore)

// WithClock overrides the wall clock used to timestamp new rows.
func WithClock(now func() time.Time) StoreOption {
	return func(s *sqlxStore) {
		if now != nil {
			s.now = now
		}
	}
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance with migrations applied.
func NewStore(db *sqlx.DB, logger *slog.Logger, opts ...StoreOption) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time in the canonical stored form. All
// timestamps are UTC with second precision so that the text values SQLite
// compares are uniformly formatted.
func (s *sqlxStore) timestamp() time.Time {
	return normalizeTime(s.now())
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// GetSetting returns the value stored under key.
func (s *sqlxStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, fmt.Errorf("setting key cannot be empty")
	}

	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}

	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "Setting not found", "key", key)
		return "", false, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching setting", "key", key, "error", err)
		return "", false, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting setting", "key", key, "error", err)
		return "", false, fmt.Errorf("%w: failed to get setting %q: %w", ErrStorageUnavailable, key, err)
	}

	return value, true, nil
}

// UpsertSetting inserts or replaces the value stored under key. Concurrent
// writers resolve as last write wins.
func (s *sqlxStore) UpsertSetting(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("setting key cannot be empty")
	}

	setting := &Setting{Key: key, Value: value, UpdatedAt: s.timestamp()}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (:key, :value, :updated_at)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at;
	`

	if _, err := s.db.NamedExecContext(ctx, query, setting); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting setting", "key", key, "error", err)
		return fmt.Errorf("%w: failed to upsert setting %q: %w", ErrStorageUnavailable, key, err)
	}

	s.logger.DebugContext(ctx, "Setting saved successfully", "key", key, "length", len(value))
	return nil
}

// InitializeSettings seeds defaults inside a single transaction, leaving
// existing rows untouched.
func (s *sqlxStore) InitializeSettings(ctx context.Context, defaults map[string]string) error {
	if len(defaults) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for seeding settings", "error", err)
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStorageUnavailable, err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := s.timestamp()
	var seeded int64
	for _, key := range keys {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
			key, defaults[key], now)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error seeding setting", "key", key, "error", err)
			return fmt.Errorf("%w: failed to seed setting %q: %w", ErrStorageUnavailable, key, err)
		}
		if affected, err := result.RowsAffected(); err == nil {
			seeded += affected
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit settings seed", "error", err)
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrStorageUnavailable, err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Settings initialized", "defaults", len(defaults), "seeded", seeded)
	return nil
}

// AppendRating inserts a new rating. ID and Timestamp are set on success.
func (s *sqlxStore) AppendRating(ctx context.Context, rating *Rating) error {
	if rating == nil {
		return fmt.Errorf("%w: cannot save nil rating", ErrInvalidRating)
	}
	if rating.UserID == 0 {
		return fmt.Errorf("%w: rating must have a non-zero user_id", ErrInvalidRating)
	}
	if rating.Value < 0 || rating.Value > 100 {
		return fmt.Errorf("%w: value %d out of range [0,100]", ErrInvalidRating, rating.Value)
	}

	rating.Timestamp = s.timestamp()

	query := `
		INSERT INTO ratings (user_id, display_name, value, timestamp)
		VALUES (:user_id, :display_name, :value, :timestamp);
	`

	result, err := s.db.NamedExecContext(ctx, query, rating)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving rating", "user_id", rating.UserID, "error", err)
		return fmt.Errorf("%w: failed to save rating for user %d: %w", ErrStorageUnavailable, rating.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rating.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving rating",
			"user_id", rating.UserID, "error", err)
	}

	s.logger.DebugContext(ctx, "Rating saved successfully",
		"user_id", rating.UserID, "value", rating.Value, "rating_id", rating.ID)
	return nil
}

// CountRatings returns the total number of recorded ratings.
func (s *sqlxStore) CountRatings(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ratings`); err != nil {
		s.logger.ErrorContext(ctx, "Error counting ratings", "error", err)
		return 0, fmt.Errorf("%w: failed to count ratings: %w", ErrStorageUnavailable, err)
	}
	return count, nil
}

// RatingStatsSince aggregates ratings with timestamp >= since.
func (s *sqlxStore) RatingStatsSince(ctx context.Context, since time.Time) (RatingStats, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(AVG(value), 0.0) AS average
		FROM ratings
		WHERE timestamp >= ?;
	`
	return s.ratingStats(ctx, query, normalizeTime(since))
}

// RatingStatsAllTime aggregates every rating ever recorded.
func (s *sqlxStore) RatingStatsAllTime(ctx context.Context) (RatingStats, error) {
	query := `SELECT COUNT(*) AS count, COALESCE(AVG(value), 0.0) AS average FROM ratings;`
	return s.ratingStats(ctx, query)
}

func (s *sqlxStore) ratingStats(ctx context.Context, query string, args ...any) (RatingStats, error) {
	if ctx.Err() != nil {
		return RatingStats{}, ctx.Err()
	}

	var stats RatingStats
	err := s.db.GetContext(ctx, &stats, query, args...)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while aggregating ratings", "error", err)
		return RatingStats{}, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error aggregating ratings", "error", err)
		return RatingStats{}, fmt.Errorf("%w: failed to aggregate ratings: %w", ErrStorageUnavailable, err)
	}

	s.logger.DebugContext(ctx, "Aggregated ratings", "count", stats.Count, "average", stats.Average)
	return stats, nil
}

// RunSQLMaintenance executes VACUUM and lets SQLite refresh its planner
// statistics.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("%w: failed to execute VACUUM: %w", ErrStorageUnavailable, err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
