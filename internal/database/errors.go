package database

import "errors"

var (
	// ErrStorageUnavailable wraps every failure of the underlying database.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidRating is returned when a rating fails validation.
	ErrInvalidRating = errors.New("invalid rating")
)
