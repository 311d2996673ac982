package store

import "errors"

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write collides with an existing record
// (e.g. a duplicate vote).
var ErrConflict = errors.New("record conflict")
