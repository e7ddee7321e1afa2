package cache

import (
	"fmt"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/rs/zerolog/log"
)

// NewFromConfig creates a cache implementation based on the provided
// configuration. The name labels the cache in logs and metrics.
//
// The cache type must be either "memory" or "none". Any other value returns an
// error.
func NewFromConfig[T any](
	cacheConfig config.CacheConfig,
	name string,
	ttl time.Duration,
) (ContentCache[T], error) {
	switch cacheConfig.Type {
	case "memory":
		log.Info().
			Str("cache_type", "memory").
			Str("cache_name", name).
			Dur("ttl", ttl).
			Int("max_size", cacheConfig.MaxSize).
			Msg("initializing in-memory cache")

		memory, err := NewMemory[T](ttl, cacheConfig.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}

		return NewInstrumented(memory, "memory", name), nil

	case "none":
		log.Warn().
			Str("cache_type", "none").
			Str("cache_name", name).
			Msg("caching disabled: every request will call upstream providers")

		return NewInstrumented(NewNoop[T](), "none", name), nil

	default:
		return nil, fmt.Errorf("invalid cache type %q: must be either \"memory\" or \"none\"", cacheConfig.Type)
	}
}
