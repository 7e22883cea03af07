package worker

import (
	"sync/atomic"

	"github.com/okian/lovequiz/pkg/logger"
)

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName names the worker in its log group.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the worker logger.
func WithLogger(log logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if log != nil {
			w.logger = log
		}
	}
}

// WithBusyCounter shares the in-flight event counter with a pool.
func WithBusyCounter(busy *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		if busy != nil {
			w.busy = busy
		}
	}
}
