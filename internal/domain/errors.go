package domain

import "errors"

var (
	// ErrInvalidWeight is returned when a weight is not a number greater than zero.
	ErrInvalidWeight = errors.New("weight must be a number greater than 0")
	// ErrFutureTimestamp is returned when a timestamp later than now is committed.
	ErrFutureTimestamp = errors.New("timestamp is in the future")
	// ErrStorageUnavailable wraps any failure of the persistence layer.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
