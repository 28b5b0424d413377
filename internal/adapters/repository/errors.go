package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUnavailable  = errors.New("store unavailable")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
