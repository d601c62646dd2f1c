package caching

import "errors"

var (
	// ErrInvalidCapacity is returned when a cache is created with a capacity less than one.
	ErrInvalidCapacity = errors.New("capacity must be greater than zero")

	// ErrInvalidTTL is returned when a memoizer is created with a non-positive time-to-live.
	ErrInvalidTTL = errors.New("TTL must be greater than zero")
)
