// Package repository defines the ranking store contract and its
// implementations. Stores only need key-range semantics: records are kept
// in ascending composite-key order, so rank and top-N queries reduce to
// counting and scanning below a key.
package repository

import (
	"context"
	"time"
)

// Record is one persisted, ranked leaderboard entry. A single accepted
// submission produces two records sharing ID and SortKey: one in the
// all-time partition, one in the submission day's daily partition.
type Record struct {
	ID          string
	Partition   string
	SortKey     string
	DisplayName string
	AverageMs   float64
	SubmittedAt time.Time
}

// Store provides ordered access to leaderboard records per partition.
type Store interface {
	// Insert writes rec into its partition.
	Insert(ctx context.Context, rec Record) error

	// CountBefore returns how many records in partition sort strictly
	// before sortKey.
	CountBefore(ctx context.Context, partition, sortKey string) (int, error)

	// TopN returns the first n records of partition in key order
	// (fastest first).
	TopN(ctx context.Context, partition string, n int) ([]Record, error)

	// Count returns the number of records in partition.
	Count(ctx context.Context, partition string) (int, error)

	// Available reports whether the store can serve requests.
	Available(ctx context.Context) bool
}
