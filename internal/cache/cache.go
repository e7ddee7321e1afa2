package cache

import (
	"context"
)

// ContentCache defines the interface for content caching implementations.
// The generic type T represents the value type being cached.
type ContentCache[T any] interface {
	// Get retrieves a value from the cache.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores a value in the cache.
	Set(ctx context.Context, key string, value T) error

	// Invalidate removes a value from the cache.
	Invalidate(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
