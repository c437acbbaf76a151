// Package dedupe tracks already-processed scan ids so replayed submissions
// are dropped before they reach the checkpoint log.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen scan ids for at-most-once checkpoint recording.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so a scan can be retried, used when an event
	// was recorded here but then rejected by the queue.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps seen ids in a map with a fixed-size ring of
// insertion order. When the ring is full the oldest id is evicted, so a
// duplicate arriving long after the original may slip through; the store
// append is tolerant of that.
type inMemoryDeduper struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	ring  []string
	next  int
	bound int
	size  atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		bound: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.bound > 0 {
		d.ring = make([]string, d.bound)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.bound > 0 {
		// Evict whatever occupied this ring slot before reusing it.
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
			d.size.Add(-1)
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.bound
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; !exists {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	// The ring slot keeps the stale id; eviction of an absent map entry is
	// a no-op so this stays consistent.
	for i, v := range d.ring {
		if v == id {
			d.ring[i] = ""
			break
		}
	}
}

// Size returns the current number of tracked ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
