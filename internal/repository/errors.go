package repository

import "errors"

// ErrNotFound is returned when a record does not exist in any store.
var ErrNotFound = errors.New("record not found")
