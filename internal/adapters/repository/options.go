package repository

import "time"

// MemoryOption applies a configuration option to a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithRetentionDays enables the daily-partition sweeper and sets how many
// days of daily partitions to keep. Zero or negative disables sweeping.
func WithRetentionDays(days int) MemoryOption {
	return func(s *MemoryStore) { s.retentionDays = days }
}

// WithSweepInterval sets how often the retention sweeper runs.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// withMemTimeSource overrides the sweeper clock; tests only.
func withMemTimeSource(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}
