package queue

import "errors"

// ErrQueueClosed reports an operation against a closed queue.
var ErrQueueClosed = errors.New("queue is closed")
