package storage

import "errors"

// Storage errors shared by every backend.
var (
	// ErrNotFound is returned when a requested sample, quote, or day
	// does not exist. Per-day lookups treat this as "drop the day".
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
