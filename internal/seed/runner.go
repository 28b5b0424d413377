package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/reflex/internal/domain/validate"
	"github.com/okian/reflex/pkg/logger"
)

// Run executes a complete seed pass: health check, generate, submit
// concurrently, then fetch and log the resulting leaderboard.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("seed")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("scores", cfg.NumScores),
		logger.Int("workers", cfg.Workers),
	)

	c := newClient(cfg)
	if err := c.health(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // synthetic data
	subs := Generate(cfg.NumScores, rng)
	stats.Generated = len(subs)

	if err := submitAll(ctx, c, cfg, subs, stats); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	entries, err := c.leaderboard(ctx, cfg.TopN)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(entries)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	for i, e := range entries {
		if i >= 10 {
			break
		}
		log.Info(ctx, "leaderboard entry",
			logger.Int("rank", e.Rank),
			logger.String("name", e.DisplayName),
			logger.Float64("averageMs", e.AverageMs),
		)
	}
	log.Info(ctx, "seed run finished",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}

// submitAll fans the submissions out over cfg.Workers goroutines.
func submitAll(ctx context.Context, c *client, cfg *Config, subs []validate.Submission, stats *Stats) error {
	log := logger.Get().Named("seed")

	var submitted, accepted, rejected, failed atomic.Int64
	work := make(chan validate.Submission)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range work {
				submitted.Add(1)
				outcome, err := c.submit(ctx, sub)
				switch {
				case err != nil:
					failed.Add(1)
					log.Warn(ctx, "submission failed",
						logger.String("name", sub.DisplayName), logger.Error(err))
				case outcome.Accepted:
					accepted.Add(1)
				default:
					rejected.Add(1)
				}
			}
		}()
	}

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return ctx.Err()
		case work <- sub:
		}
	}
	close(work)
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())
	return nil
}
