// Package queue carries session events from the request path to the workers.
//
// Enqueue never blocks: a full or closed queue drops the event and reports
// why, because events are observational and must not slow the quiz down.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/lovequiz/internal/domain/model"
	"github.com/okian/lovequiz/pkg/metrics"
)

const defaultQueueCapacity = 4096

// Event is the payload type flowing through the queue.
type Event = model.Event

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event to the queue or returns ErrFull / ErrClosed.
	Enqueue(ctx context.Context, e Event) error

	// Dequeue returns a channel that will receive events as they become available.
	// The channel is closed once the queue is closed and drained, or ctx is done.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops accepting events. Buffered events are still delivered.
	Close() error
}

type envelope struct {
	event      Event
	enqueuedAt time.Time
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan envelope
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan envelope, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.events <- envelope{event: e, enqueuedAt: time.Now()}:
		metrics.RecordQueueEnqueue()
		q.observeSize()
		return nil
	case <-ctx.Done():
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive events as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-q.events:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				metrics.RecordQueueProcessingLatency(float64(time.Since(env.enqueuedAt).Microseconds()) / 1000)
				q.observeSize()
				select {
				case out <- env.event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observeSize()
}

func (q *InMemoryQueue) observeSize() int {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.events)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
