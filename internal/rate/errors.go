package rate

import "errors"

var (
	// ErrRateLimited is returned when a request cannot be admitted before its
	// context deadline.
	ErrRateLimited = errors.New("rate limited")
)
