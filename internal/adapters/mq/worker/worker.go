// Package worker drains session events and fans them out to sinks.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/lovequiz/internal/domain/model"
	"github.com/okian/lovequiz/pkg/logger"
	"github.com/okian/lovequiz/pkg/metrics"
)

// Event abstracts what workers read off the queue.
type Event = model.Event

// Sink consumes events. A failing sink never affects other sinks.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// InMemoryWorker delivers each dequeued event to every sink.
type InMemoryWorker struct {
	queue Queue
	sinks []Sink
	name  string
	busy  *atomic.Int64

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, sinks []Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  queue,
		sinks:  sinks,
		name:   "worker",
		busy:   &atomic.Int64{},
		done:   make(chan struct{}),
		logger: logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run consumes events until the queue is drained and closed or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for event := range w.queue.Dequeue(ctx) {
		w.busy.Add(1)
		w.processEvent(ctx, event)
		w.busy.Add(-1)
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) { //nolint:gocritic // hugeParam: events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	for _, s := range w.sinks {
		if err := s.Handle(ctx, event); err != nil {
			metrics.RecordSinkError(s.Name())
			metrics.RecordErrorByComponent("worker", "sink_"+s.Name())
			w.logger.Error(ctx, "sink failed",
				logger.String("sink", s.Name()),
				logger.String("session", event.SessionID),
				logger.String("kind", string(event.Kind)),
				logger.Error(err),
			)
		}
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	busy    atomic.Int64

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers sharing queue and sinks.
func NewPool(workerCount int, queue Queue, sinks ...Sink) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, sinks,
			WithName("worker-"+strconv.Itoa(i)),
			WithBusyCounter(&pool.busy),
		)
	}

	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// UpdateMetrics publishes the active and idle worker gauges.
func (p *Pool) UpdateMetrics() {
	busy := int(p.busy.Load())
	metrics.UpdateWorkerActiveCount(busy)
	metrics.UpdateWorkerIdleCount(len(p.workers) - busy)
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("drain workers: %w", ctx.Err())
		}
	}
	return nil
}
