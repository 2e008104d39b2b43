package store

import "errors"

// Sentinel errors shared by the persistence backends.
var (
	// ErrNotFound is returned when a record is not present.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned for records that cannot be persisted,
	// such as a work without a provider id.
	ErrInvalidInput = errors.New("invalid record")
)
