package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if REFLEX_CONFIG is set
//  3. env (prefix REFLEX_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("REFLEX_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: REFLEX_ADDR, REFLEX_RATE_LIMIT, ...
	// Keys map to the koanf struct tags with underscores preserved.
	envProvider := env.Provider("REFLEX_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "reflex_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.PersistQueueSize < 1:
		return fmt.Errorf("%w: persist_queue_size must be positive", ErrInvalidConfig)
	case c.PersistWorkers < 1:
		return fmt.Errorf("%w: persist_workers must be positive", ErrInvalidConfig)
	case c.RateLimit < 1:
		return fmt.Errorf("%w: rate_limit must be positive", ErrInvalidConfig)
	case c.RateWindowMS < 1:
		return fmt.Errorf("%w: rate_window_ms must be positive", ErrInvalidConfig)
	case c.RetentionDays < 0:
		return fmt.Errorf("%w: retention_days must not be negative", ErrInvalidConfig)
	}
	return nil
}
