// Package dedupe tracks client gesture ids so a repeated gesture is applied once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper records seen keys to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Size returns the number of remembered keys.
	Size() int64
}

// Key scopes a gesture id to its session.
func Key(scope, id string) string {
	return scope + "/" + id
}

// inMemoryDeduper keeps keys in a set and evicts the oldest through a ring.
// maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}

	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	d.seen[key] = struct{}{}

	if d.ring != nil {
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
		}
		d.ring[d.next] = key
		d.next = (d.next + 1) % len(d.ring)
	}
	return false
}

// Size returns the current number of remembered keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
