package store

import "eanft/pkg/platform/sentinel"

// ErrNotFound is returned when no record exists for an account ID.
var ErrNotFound = sentinel.ErrNotFound
