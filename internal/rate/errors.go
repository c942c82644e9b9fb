package rate

import "errors"

var (
	// ErrRateLimited is returned once a key has exhausted its failure budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidConfig is returned by New for an unusable budget.
	ErrInvalidConfig = errors.New("invalid rate limit config")
	// ErrRedisUnavailable wraps Redis command failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
