package queue

// Option applies a configuration option to the queue.
type Option func(*InMemoryQueue)

// WithCapacity sets the queue's buffer capacity.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}
