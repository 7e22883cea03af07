// Package repository keeps live quiz sessions in process memory.
//
// Entries expire after a period without access. Nothing is persisted;
// a restart forgets every session.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/lovequiz/pkg/metrics"
)

const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = time.Minute
	defaultMaxEntries    = 10_000
)

// Store provides access to live sessions by id.
type Store[V any] interface {
	// Put adds a new entry. An expired entry under the same id is evicted
	// and replaced, and expired entries never count toward the capacity.
	// Returns ErrExists, ErrFull or ErrClosed.
	Put(ctx context.Context, id string, v V) error

	// Get returns the entry and refreshes its idle timer.
	// Returns ErrNotFound if the id is unknown or expired.
	Get(ctx context.Context, id string) (V, error)

	// Delete removes the entry and returns it.
	Delete(ctx context.Context, id string) (V, bool)

	// Sweep evicts entries idle longer than the TTL and returns how many.
	Sweep(ctx context.Context) int

	// Count returns the number of live entries.
	Count(ctx context.Context) int
}

type entry[V any] struct {
	value    V
	lastSeen time.Time
}

// MemoryStore is a map-backed Store with a background sweeper.
type MemoryStore[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	closed  bool

	ttl           time.Duration
	sweepInterval time.Duration
	maxEntries    int
	onEvict       func(ctx context.Context, id string, v V)
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs a store. Call Start to run the sweeper and
// Close to stop it.
func NewMemoryStore[V any](opts ...Option[V]) *MemoryStore[V] {
	s := &MemoryStore[V]{
		entries:       make(map[string]*entry[V]),
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		maxEntries:    defaultMaxEntries,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateSessionsActive(0)
	return s
}

// Start runs the sweeper until ctx is done or Close is called.
func (s *MemoryStore[V]) Start(ctx context.Context) {
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
				s.Sweep(ctx)
			}
		}
	}()
}

// Close stops the sweeper, refuses new entries and returns the entries that
// were still live so the caller can release them.
func (s *MemoryStore[V]) Close() []V {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopChan)
	live := make([]V, 0, len(s.entries))
	for id, e := range s.entries {
		live = append(live, e.value)
		delete(s.entries, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	metrics.UpdateSessionsActive(0)
	return live
}

func (s *MemoryStore[V]) Put(ctx context.Context, id string, v V) error {
	s.mu.Lock()

	now := s.now()
	var stale []evicted[V]
	if e := s.entries[id]; e != nil && s.expired(e, now) {
		stale = append(stale, evicted[V]{id: id, v: e.value})
		delete(s.entries, id)
	}
	if len(s.entries) >= s.maxEntries {
		stale = append(stale, s.purge(now)...)
	}

	var err error
	switch {
	case s.closed:
		err = ErrClosed
	case s.entries[id] != nil:
		err = ErrExists
	case len(s.entries) >= s.maxEntries:
		err = ErrFull
	default:
		s.entries[id] = &entry[V]{value: v, lastSeen: now}
	}
	metrics.UpdateSessionsActive(len(s.entries))
	s.mu.Unlock()

	s.evict(ctx, stale)
	return err
}

func (s *MemoryStore[V]) Get(_ context.Context, id string) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	now := s.now()
	if s.expired(e, now) {
		var zero V
		return zero, ErrNotFound
	}
	e.lastSeen = now
	return e.value, nil
}

func (s *MemoryStore[V]) Delete(_ context.Context, id string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	delete(s.entries, id)
	metrics.UpdateSessionsActive(len(s.entries))
	return e.value, true
}

func (s *MemoryStore[V]) Sweep(ctx context.Context) int {
	s.mu.Lock()
	out := s.purge(s.now())
	metrics.UpdateSessionsActive(len(s.entries))
	s.mu.Unlock()

	s.evict(ctx, out)
	return len(out)
}

type evicted[V any] struct {
	id string
	v  V
}

func (s *MemoryStore[V]) expired(e *entry[V], now time.Time) bool {
	return now.Sub(e.lastSeen) > s.ttl
}

// purge removes every expired entry. Must be called with s.mu held.
func (s *MemoryStore[V]) purge(now time.Time) []evicted[V] {
	var out []evicted[V]
	for id, e := range s.entries {
		if s.expired(e, now) {
			out = append(out, evicted[V]{id: id, v: e.value})
			delete(s.entries, id)
		}
	}
	return out
}

// evict runs the eviction hook outside the store lock.
func (s *MemoryStore[V]) evict(ctx context.Context, out []evicted[V]) {
	if s.onEvict == nil {
		return
	}
	for _, e := range out {
		s.onEvict(ctx, e.id, e.v)
	}
}

func (s *MemoryStore[V]) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
