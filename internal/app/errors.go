package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrRateLimited reports a submission rejected by the abuse limiter.
	ErrRateLimited = errors.New("submission rate limit exceeded")

	// ErrInvalidPartition reports an unknown leaderboard partition selector.
	ErrInvalidPartition = errors.New("invalid leaderboard partition")

	// ErrNotStarted reports an operation on a service before Start.
	ErrNotStarted = errors.New("service not started")
)
