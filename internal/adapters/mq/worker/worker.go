// Package worker drains the persist queue into durable storage.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/reflex/internal/adapters/repository"
	"github.com/okian/reflex/pkg/logger"
	"github.com/okian/reflex/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Record is what workers read off the queue.
type Record = repository.Record

// Persister writes a record to durable storage.
type Persister interface {
	Insert(ctx context.Context, rec Record) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker drains records from the queue into the persister until its
// channel closes or shutdown is requested.
type Worker struct {
	queue     Queue
	persister Persister
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, persister Persister, opts ...Option) *Worker {
	w := &Worker{
		queue:     queue,
		persister: persister,
		name:      "persist-worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logger.Get().Named(w.name)
	return w
}

// Run starts the worker loop. It returns when the queue closes, shutdown
// is requested, or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			w.persist(ctx, rec)
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}

// persist writes one record. Failures are logged and counted; the record
// is dropped, the memory index already holds it.
func (w *Worker) persist(ctx context.Context, rec Record) {
	if err := w.persister.Insert(ctx, rec); err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("persist_worker", "insert_failed")
		w.logger.Error(ctx, "persist failed",
			logger.String("recordID", rec.ID),
			logger.String("partition", rec.Partition),
			logger.Error(err),
		)
		return
	}
	metrics.RecordPersistWrite()
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates count workers draining queue into persister. A count
// below one defaults to a small pool: SQLite serializes writes anyway.
func NewPool(count int, queue Queue, persister Persister) *Pool {
	if count < 1 {
		count = defaultWorkerCount
		if n := runtime.NumCPU(); n < count {
			count = n
		}
	}
	p := &Pool{
		workers: make([]*Worker, count),
		queue:   queue,
		logger:  logger.Get().Named("persist-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(queue, persister,
			WithName("persist-worker-"+strconv.Itoa(i)),
		)
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Warn(ctx, "closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker", i))
		}
	}
	return nil
}
