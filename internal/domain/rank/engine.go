// Package rank turns accepted submissions into ranked leaderboard records.
package rank

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/reflex/internal/adapters/repository"
	"github.com/okian/reflex/internal/domain/types"
)

// Accepted describes a submission the engine records. Validation happens
// upstream; the engine trusts its input.
type Accepted struct {
	DisplayName string
	AverageMs   float64
}

// Submitted is the engine's record of one accepted submission, handed back
// so callers can forward it to durable storage.
type Submitted struct {
	Outcome types.SubmitOutcome
	Records []repository.Record
}

// Engine assigns each accepted submission a composite sort key and inserts
// it into the all-time and current-day partitions of the backing store.
type Engine struct {
	store repository.Store
	seq   atomic.Uint64
	now   func() time.Time
}

// Option applies a configuration option to the engine.
type Option func(*Engine)

// WithTimeSource overrides the submission clock.
func WithTimeSource(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithStartSeq seeds the insertion sequence counter. Used at startup so
// sequence numbers keep growing past records reloaded from durable storage.
func WithStartSeq(n uint64) Option {
	return func(e *Engine) { e.seq.Store(n) }
}

// NewEngine creates a ranking engine over store.
func NewEngine(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit records sub in both partitions and returns its all-time rank.
// The rank reflects the store at insertion time; concurrent submissions
// that land earlier in the ordering can make it stale by the time the
// caller reads it.
func (e *Engine) Submit(ctx context.Context, sub Accepted) (Submitted, error) {
	at := e.now().UTC()
	seq := e.seq.Add(1)
	key := repository.SortKey(sub.AverageMs, at, seq)

	rec := repository.Record{
		ID:          uuid.NewString(),
		SortKey:     key,
		DisplayName: sub.DisplayName,
		AverageMs:   sub.AverageMs,
		SubmittedAt: at,
	}

	records := make([]repository.Record, 0, 2)
	for _, partition := range []string{repository.PartitionAllTime, repository.DailyPartition(at)} {
		r := rec
		r.Partition = partition
		if err := e.store.Insert(ctx, r); err != nil {
			return Submitted{}, fmt.Errorf("insert into %s: %w", partition, err)
		}
		records = append(records, r)
	}

	before, err := e.store.CountBefore(ctx, repository.PartitionAllTime, key)
	if err != nil {
		return Submitted{}, fmt.Errorf("rank lookup: %w", err)
	}

	return Submitted{
		Outcome: types.SubmitOutcome{Accepted: true, Rank: before + 1},
		Records: records,
	}, nil
}

// TopN returns the first n entries of partition with ranks assigned from 1.
func (e *Engine) TopN(ctx context.Context, partition string, n int) ([]types.Entry, error) {
	records, err := e.store.TopN(ctx, partition, n)
	if err != nil {
		return nil, fmt.Errorf("top %d of %s: %w", n, partition, err)
	}
	entries := make([]types.Entry, len(records))
	for i, rec := range records {
		entries[i] = types.Entry{
			Rank:        i + 1,
			DisplayName: rec.DisplayName,
			AverageMs:   rec.AverageMs,
			SubmittedAt: rec.SubmittedAt,
		}
	}
	return entries, nil
}
