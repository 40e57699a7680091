package store

import "errors"

// ErrNotFound is returned when no progress record exists for a key.
var ErrNotFound = errors.New("store: progress record not found")
