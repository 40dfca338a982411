package database

import (
	"database/sql"
	"time"
)

// Setting keys.
const (
	// SettingPercentageText holds the reply template. It must contain
	// the {percentage} placeholder.
	SettingPercentageText = "percentage_text"
	// SettingJokes holds a JSON array of joke strings.
	SettingJokes = "jokes"
)

// Setting is a single key-value configuration row editable at runtime.
type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Rating is one recorded draw of the random percentage. Rows are
// append-only; DisplayName is a snapshot taken at write time.
type Rating struct {
	ID          int64          `db:"id"`
	UserID      int64          `db:"user_id"`
	DisplayName sql.NullString `db:"display_name"`
	Value       int            `db:"value"`
	Timestamp   time.Time      `db:"timestamp"`
}

// RatingStats is the aggregate of ratings inside a window.
type RatingStats struct {
	Count   int     `db:"count"`
	Average float64 `db:"average"`
}
