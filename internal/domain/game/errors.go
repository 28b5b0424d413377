package game

import "errors"

// Sentinel kinds for session errors.
var (
	ErrAlreadyStarted = errors.New("session already started")
)
