package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

// Memory is an in-memory cache implementation using otter. Entries expire a
// fixed TTL after they are written, and the cache is bounded by maxSize.
type Memory[T any] struct {
	cache   *otter.Cache[string, T]
	ttl     time.Duration
	counter *stats.Counter
}

// NewMemory creates a new in-memory cache with the specified TTL and max size.
func NewMemory[T any](ttl time.Duration, maxSize int) (*Memory[T], error) {
	counter := stats.NewCounter()
	cache, err := otter.New(&otter.Options[string, T]{
		MaximumSize:      maxSize,
		StatsRecorder:    counter,
		ExpiryCalculator: otter.ExpiryCreating[string, T](ttl),
	})
	if err != nil {
		return nil, err
	}

	return &Memory[T]{
		cache:   cache,
		ttl:     ttl,
		counter: counter,
	}, nil
}

// Get retrieves a value from the cache.
func (m *Memory[T]) Get(ctx context.Context, key string) (T, bool, error) {
	entry, ok := m.cache.GetEntry(key)
	if !ok {
		var zero T
		return zero, false, nil
	}

	return entry.Value, true, nil
}

// Set stores a value in the cache, replacing any existing value.
func (m *Memory[T]) Set(ctx context.Context, key string, value T) error {
	m.cache.Set(key, value)
	return nil
}

// Invalidate removes a value from the cache.
func (m *Memory[T]) Invalidate(ctx context.Context, key string) error {
	m.cache.Invalidate(key)
	return nil
}

// Stats returns a snapshot of hit and miss counts.
func (m *Memory[T]) Stats() stats.Stats {
	return m.counter.Snapshot()
}

// Close discards all entries.
func (m *Memory[T]) Close() error {
	m.cache.InvalidateAll()
	return nil
}
