// Package types holds the wire-facing leaderboard shapes shared between
// the ranking engine, the application service, and the HTTP layer.
package types

import "time"

// Entry is one leaderboard row as served to clients. Rank is 1-based
// within the queried partition.
type Entry struct {
	Rank        int       `json:"rank"`
	DisplayName string    `json:"displayName"`
	AverageMs   float64   `json:"averageMs"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SubmitOutcome reports the result of a score submission. Rank is only
// meaningful when Accepted; Reasons is only populated when not.
type SubmitOutcome struct {
	Accepted bool     `json:"accepted"`
	Rank     int      `json:"rank,omitempty"`
	Reasons  []string `json:"reasons,omitempty"`
}
