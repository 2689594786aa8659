package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates the primary key.
	ErrDuplicate = errors.New("duplicate key")
)
