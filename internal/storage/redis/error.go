package redis

import "errors"

var (
	ErrTooManyConflicts = errors.New("too many concurrent writes to bookings key")
	ErrUnavailable      = errors.New("redis storage unavailable")
)
