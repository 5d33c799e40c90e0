package repository

import "errors"

var (
	// ErrNotFound is returned when a row addressed by id or key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write hits a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)
