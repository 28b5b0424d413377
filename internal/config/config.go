// Package config defines service configuration structures and loading.
//
// Conventions follow the rest of the repo: defaults come from New, an
// optional YAML file and REFLEX_* environment variables layer on top, and
// external errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SQLitePath points at the durable store file. Empty disables
	// durability and the service runs memory-only.
	SQLitePath string `koanf:"sqlite_path"`

	// PersistQueueSize bounds the write-behind persistence queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// PersistWorkers sets the number of durable-store writer goroutines.
	PersistWorkers int `koanf:"persist_workers"`

	// RetentionDays controls how many UTC days of daily partitions the
	// memory index keeps before the sweeper prunes them. 0 keeps all.
	RetentionDays int `koanf:"retention_days"`

	// RateLimit and RateWindowMS bound submissions per client tag.
	RateLimit    int `koanf:"rate_limit"`
	RateWindowMS int `koanf:"rate_window_ms"`

	// RateMaxTags bounds the number of client tags tracked at once.
	RateMaxTags int `koanf:"rate_max_tags"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		MaxLeaderboardLimit: 100,
		SQLitePath:          "",
		PersistQueueSize:    10_000,
		PersistWorkers:      max(2, runtime.NumCPU()/2),
		RetentionDays:       30,
		RateLimit:           30,
		RateWindowMS:        60_000,
		RateMaxTags:         100_000,
	}
}
