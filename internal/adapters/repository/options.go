package repository

import (
	"context"
	"time"
)

// Option applies a configuration option to the MemoryStore.
type Option[V any] func(*MemoryStore[V])

// WithTTL sets how long an untouched entry survives.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(s *MemoryStore[V]) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often idle entries are evicted.
func WithSweepInterval[V any](interval time.Duration) Option[V] {
	return func(s *MemoryStore[V]) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithMaxEntries caps the number of live entries.
func WithMaxEntries[V any](n int) Option[V] {
	return func(s *MemoryStore[V]) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithOnEvict registers a callback run for every entry the sweeper removes.
// It runs outside the store lock.
func WithOnEvict[V any](fn func(ctx context.Context, id string, v V)) Option[V] {
	return func(s *MemoryStore[V]) {
		s.onEvict = fn
	}
}

// WithClock replaces time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *MemoryStore[V]) {
		if now != nil {
			s.now = now
		}
	}
}
