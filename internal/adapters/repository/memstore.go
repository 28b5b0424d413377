package repository

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/reflex/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Each partition holds its own size-augmented treap keyed by the composite
// sort key, so insert and strictly-before counting are both O(log n)
// expected, and an in-order walk yields the leaderboard fastest-first.

// node is a treap node augmented with subtree size for rank descent.
type node struct {
	key   string
	rec   Record
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, key string, rec Record, prio uint64) *node {
	if n == nil {
		return &node{key: key, rec: rec, prio: prio, size: 1}
	}
	if key < n.key {
		n.left = insert(n.left, key, rec, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, rec, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// countBefore counts keys strictly smaller than key via rank descent.
func countBefore(n *node, key string) int {
	count := 0
	for n != nil {
		if key <= n.key {
			n = n.left
		} else {
			count += nsize(n.left) + 1
			n = n.right
		}
	}
	return count
}

// collectFirst appends up to limit records in ascending key order.
func collectFirst(n *node, limit int, out *[]Record) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectFirst(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.rec)
	}
	if len(*out) < limit {
		collectFirst(n.right, limit, out)
	}
}

// MemoryStore is the in-process ranking index. Daily partitions past the
// configured retention are dropped by a background sweeper.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]*node
	rng        *rand.Rand

	retentionDays int
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a memory store with configuration options and
// starts its retention sweeper.
func NewMemoryStore(ctx context.Context, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		partitions:    make(map[string]*node),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap balance, not security
		retentionDays: 0,
		sweepInterval: time.Hour,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startSweeper(ctx)
	return s
}

// Close stops the retention sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Insert implements Store.Insert in O(log n) expected time.
func (s *MemoryStore) Insert(ctx context.Context, rec Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	prio := s.rng.Uint64()
	s.partitions[rec.Partition] = insert(s.partitions[rec.Partition], rec.SortKey, rec, prio)
	count := nsize(s.partitions[rec.Partition])
	s.mu.Unlock()

	metrics.UpdateStoreRecords(rec.Partition, count)
	return nil
}

// CountBefore implements Store.CountBefore in O(log n) expected time.
func (s *MemoryStore) CountBefore(ctx context.Context, partition, sortKey string) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return countBefore(s.partitions[partition], sortKey), nil
}

// TopN implements Store.TopN; results come back in ascending key order.
func (s *MemoryStore) TopN(ctx context.Context, partition string, n int) ([]Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, n)
	collectFirst(s.partitions[partition], n, &out)
	return out, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context, partition string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nsize(s.partitions[partition]), nil
}

// Available always reports true: the index lives in process memory.
func (s *MemoryStore) Available(ctx context.Context) bool {
	return true
}

// startSweeper launches the retention goroutine. With retention disabled
// the goroutine is never started.
func (s *MemoryStore) startSweeper(ctx context.Context) {
	if s.retentionDays <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// sweep drops daily partitions older than the retention horizon.
func (s *MemoryStore) sweep() {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()
	for partition := range s.partitions {
		day, ok := IsDaily(partition)
		if ok && day.Before(cutoff) {
			delete(s.partitions, partition)
			metrics.UpdateStoreRecords(partition, 0)
		}
	}
}
