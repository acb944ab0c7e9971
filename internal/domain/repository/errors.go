package repository

import "errors"

// ErrDuplicate is returned when a write violates a unique key
var ErrDuplicate = errors.New("duplicate key")
