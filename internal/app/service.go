// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	persistqueue "github.com/okian/reflex/internal/adapters/mq/queue"
	workerpool "github.com/okian/reflex/internal/adapters/mq/worker"
	"github.com/okian/reflex/internal/adapters/repository"
	"github.com/okian/reflex/internal/domain/abuse"
	"github.com/okian/reflex/internal/domain/rank"
	"github.com/okian/reflex/internal/domain/types"
	"github.com/okian/reflex/internal/domain/validate"
	"github.com/okian/reflex/pkg/logger"
	"github.com/okian/reflex/pkg/metrics"
)

// Leaderboard partition selectors accepted by the API.
const (
	PartitionDaily   = "daily"
	PartitionAllTime = "alltime"
)

// Service wires validation, rate limiting, ranking, and write-behind
// persistence into the operations the HTTP API needs.
type Service struct {
	mu sync.RWMutex

	memory  *repository.MemoryStore
	durable *repository.SQLiteStore
	engine  *rank.Engine
	limiter abuse.Limiter
	queue   persistqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	sqlitePath    string
	queueSize     int
	workerCount   int
	retentionDays int
	rateLimit     int
	rateWindow    time.Duration
	rateMaxTags   int

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSQLitePath enables durable storage at the given path. Empty keeps
// the service memory-only.
func WithSQLitePath(path string) Option {
	return func(s *Service) { s.sqlitePath = path }
}

// WithPersistQueueSize sets the write-behind queue capacity.
func WithPersistQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithPersistWorkers sets the number of persistence workers.
func WithPersistWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithRetentionDays sets how many days of daily partitions to keep.
func WithRetentionDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

// WithRateLimit sets submissions allowed per client tag per window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		if limit > 0 {
			s.rateLimit = limit
		}
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithRateMaxTags bounds the limiter's tag table.
func WithRateMaxTags(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rateMaxTags = n
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:     10_000,
		workerCount:   2,
		retentionDays: 30,
		rateLimit:     30,
		rateWindow:    time.Minute,
		rateMaxTags:   100_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components. With a SQLite path
// configured, the memory index is rebuilt from durable records first.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting reflex service...")

	s.memory = repository.NewMemoryStore(ctx,
		repository.WithRetentionDays(s.retentionDays),
	)
	s.limiter = abuse.NewLimiter(
		abuse.WithLimit(s.rateLimit),
		abuse.WithWindow(s.rateWindow),
		abuse.WithMaxTags(s.rateMaxTags),
	)

	var startSeq uint64
	if s.sqlitePath != "" {
		durable, err := repository.NewSQLiteStore(s.sqlitePath)
		if err != nil {
			return fmt.Errorf("open durable store: %w", err)
		}
		s.durable = durable

		loaded, err := s.reloadLocked(ctx)
		if err != nil {
			return fmt.Errorf("reload durable records: %w", err)
		}
		startSeq = loaded
		s.logger.Info(ctx, "reloaded durable records", logger.Int64("records", int64(loaded)))

		s.queue = persistqueue.NewInMemoryQueue(
			persistqueue.WithCapacity(s.queueSize),
		)
		s.pool = workerpool.NewPool(s.workerCount, s.queue, s.durable)
		s.pool.Start(ctx)
	}

	s.engine = rank.NewEngine(s.memory, rank.WithStartSeq(startSeq))

	s.started = true
	s.logger.Info(ctx, "reflex service started",
		logger.Bool("durable", s.durable != nil),
		logger.Int("persistWorkers", s.workerCount),
		logger.Int("rateLimit", s.rateLimit),
	)
	return nil
}

// reloadLocked rebuilds the memory index from the durable store, skipping
// daily partitions past the retention horizon. It returns the number of
// all-time records loaded, used to seed the insertion sequence so new keys
// sort after reloaded ones.
func (s *Service) reloadLocked(ctx context.Context) (uint64, error) {
	records, err := s.durable.All(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	var allTime uint64
	for _, rec := range records {
		if day, ok := repository.IsDaily(rec.Partition); ok && day.Before(cutoff) {
			continue
		}
		if err := s.memory.Insert(ctx, rec); err != nil {
			return 0, err
		}
		if rec.Partition == repository.PartitionAllTime {
			allTime++
		}
	}
	return allTime, nil
}

// Stop gracefully shuts down the service, draining the persist queue.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping reflex service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.durable != nil {
		_ = s.durable.Close()
	}
	if s.memory != nil {
		_ = s.memory.Close()
	}

	s.started = false
	s.logger.Info(ctx, "reflex service stopped")
}

// SubmitScore runs a submission through the rate limiter and validator,
// records it on acceptance, and hands its records to the persist queue.
// Validation rejections come back in the outcome, not as an error.
func (s *Service) SubmitScore(ctx context.Context, sub validate.Submission) (types.SubmitOutcome, error) {
	if !s.isStarted() {
		return types.SubmitOutcome{}, ErrNotStarted
	}

	if sub.ClientTag != "" && !s.limiter.Allow(ctx, sub.ClientTag) {
		metrics.RecordSubmissionThrottled()
		return types.SubmitOutcome{}, ErrRateLimited
	}

	if res := validate.Validate(sub); !res.Accepted {
		for _, reason := range res.Reasons {
			metrics.RecordSubmissionRejected(reason)
		}
		s.logger.Debug(ctx, "submission rejected",
			logger.String("name", sub.DisplayName),
			logger.Int("reasons", len(res.Reasons)),
		)
		return types.SubmitOutcome{Accepted: false, Reasons: res.Reasons}, nil
	}

	if s.durable != nil && !s.durable.Available(ctx) {
		metrics.RecordErrorByComponent("service", "store_unavailable")
		return types.SubmitOutcome{}, repository.ErrUnavailable
	}

	submitted, err := s.engine.Submit(ctx, rank.Accepted{
		DisplayName: sub.DisplayName,
		AverageMs:   sub.AverageMs,
	})
	if err != nil {
		return types.SubmitOutcome{}, fmt.Errorf("record submission: %w", err)
	}

	if s.queue != nil {
		for _, rec := range submitted.Records {
			if !s.queue.Enqueue(ctx, rec) {
				s.logger.Warn(ctx, "persist queue rejected record",
					logger.String("recordID", rec.ID),
					logger.String("partition", rec.Partition),
				)
			}
		}
	}

	metrics.RecordSubmissionAccepted()
	return submitted.Outcome, nil
}

// Leaderboard returns the top limit entries of the named partition. The
// daily partition is the current UTC day.
func (s *Service) Leaderboard(ctx context.Context, partition string, limit int) ([]types.Entry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	var name string
	switch partition {
	case PartitionAllTime, "":
		name = repository.PartitionAllTime
	case PartitionDaily:
		name = repository.DailyPartition(time.Now())
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPartition, partition)
	}
	return s.engine.TopN(ctx, name, limit)
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Available reports whether submissions can currently be accepted.
func (s *Service) Available(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false
	}
	if s.durable != nil {
		return s.durable.Available(ctx)
	}
	return true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"durable":        s.durable != nil,
		"persistWorkers": s.workerCount,
		"rateLimit":      s.rateLimit,
	}

	if s.started {
		allTime, _ := s.memory.Count(ctx, repository.PartitionAllTime)
		daily, _ := s.memory.Count(ctx, repository.DailyPartition(time.Now()))
		stats["allTimeRecords"] = allTime
		stats["dailyRecords"] = daily
		stats["trackedClientTags"] = s.limiter.Size()
		if s.queue != nil {
			stats["persistQueueLength"] = s.queue.Len(ctx)
		}
	}
	return stats
}
