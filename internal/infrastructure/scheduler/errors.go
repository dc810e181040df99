package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when a trigger is configured without an interval or job
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
