// Package seed generates synthetic score submissions and drives them
// against a running reflex server. Used for load checks and for populating
// a fresh leaderboard during development.
package seed

import "time"

// Config controls a seed run.
type Config struct {
	// BaseURL of the target server, e.g. http://localhost:9090.
	BaseURL string

	// NumScores is how many synthetic sessions to submit.
	NumScores int

	// Workers is the number of concurrent submitters.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// TopN is how many leaderboard entries to fetch afterwards.
	TopN int
}

// Stats accumulates the outcome of a run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Generated int
	Submitted int
	Accepted  int
	Rejected  int
	Failed    int

	LeaderboardEntries int
}
