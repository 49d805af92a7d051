package store

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated,
// such as registering a username or email that is already taken.
var ErrConflict = errors.New("already exists")
