// Package queue buffers accepted leaderboard records between the ranking
// path and the durable store. Ranking never waits on disk: records are
// handed to this queue and written behind by the persist workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/reflex/internal/adapters/repository"
	"github.com/okian/reflex/pkg/metrics"
)

const defaultCapacity = 10_000

// Record is the payload type flowing through the queue.
type Record = repository.Record

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record to the queue. Returns false if the queue is
	// full or closed and the record was dropped.
	Enqueue(ctx context.Context, rec Record) bool

	// Dequeue returns a channel that receives records as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Close shuts down the queue. Records already enqueued still drain
	// to consumers. Closing twice returns ErrQueueClosed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.records = make(chan Record, q.capacity)

	metrics.UpdatePersistQueueCapacity(q.capacity)
	metrics.UpdatePersistQueueSize(0)
	metrics.UpdatePersistQueueUtilization(0)
	return q
}

// Enqueue adds a record without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, rec Record) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("persist_queue", "closed")
		return false
	}

	select {
	case q.records <- rec:
		q.publishGauges()
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("persist_queue", "context_cancelled")
		return false
	default:
		metrics.RecordErrorByComponent("persist_queue", "full")
		return false
	}
}

// Dequeue returns a channel that receives queued records.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for rec := range q.records {
			select {
			case out <- rec:
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	n := len(q.records)
	metrics.UpdatePersistQueueSize(n)
	return n
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishGauges() {
	n := len(q.records)
	metrics.UpdatePersistQueueSize(n)
	metrics.UpdatePersistQueueUtilization(float64(n) / float64(q.capacity))
}
