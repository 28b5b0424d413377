package worker

// Option applies a configuration option to a worker.
type Option func(*Worker)

// WithName sets the worker's name, used for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}
