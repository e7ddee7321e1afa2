package cache

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	metricsOnce     sync.Once
	cacheOperations metric.Int64Counter
	cacheDuration   metric.Float64Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/gnome-horoscope/gnome-bridge/internal/cache")

		var err error
		cacheOperations, err = meter.Int64Counter(
			"cache.operations",
			metric.WithDescription("Total cache operations"),
		)
		if err != nil {
			otel.Handle(err)
		}

		cacheDuration, err = meter.Float64Histogram(
			"cache.operation.duration",
			metric.WithDescription("Cache operation duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// Instrumented wraps a ContentCache with metrics and span attributes. Name
// distinguishes caches of the same type (e.g. "horoscope" and "moon").
type Instrumented[T any] struct {
	wrapped   ContentCache[T]
	cacheType string
	name      string
}

// NewInstrumented creates an instrumented cache wrapper.
func NewInstrumented[T any](cache ContentCache[T], cacheType string, name string) *Instrumented[T] {
	initMetrics()
	return &Instrumented[T]{
		wrapped:   cache,
		cacheType: cacheType,
		name:      name,
	}
}

// Get retrieves a value from the wrapped cache, recording hit, miss or error.
func (i *Instrumented[T]) Get(ctx context.Context, key string) (T, bool, error) {
	start := time.Now()
	value, found, err := i.wrapped.Get(ctx, key)

	status := "miss"
	if found {
		status = "hit"
	}
	i.record(ctx, "get", start, statusOf(err, status))

	return value, found, err
}

// Set stores a value in the wrapped cache.
func (i *Instrumented[T]) Set(ctx context.Context, key string, value T) error {
	start := time.Now()
	err := i.wrapped.Set(ctx, key, value)
	i.record(ctx, "set", start, statusOf(err, "success"))

	return err
}

// Invalidate removes a value from the wrapped cache.
func (i *Instrumented[T]) Invalidate(ctx context.Context, key string) error {
	start := time.Now()
	err := i.wrapped.Invalidate(ctx, key)
	i.record(ctx, "invalidate", start, statusOf(err, "success"))

	return err
}

func (i *Instrumented[T]) Close() error {
	return i.wrapped.Close()
}

func statusOf(err error, ok string) string {
	if err != nil {
		return "error"
	}
	return ok
}

func (i *Instrumented[T]) record(ctx context.Context, operation string, start time.Time, status string) {
	duration := time.Since(start)
	attrs := []attribute.KeyValue{
		attribute.String("cache.type", i.cacheType),
		attribute.String("cache.name", i.name),
		attribute.String("cache.operation", operation),
	}

	if cacheDuration != nil {
		cacheDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	if cacheOperations != nil {
		cacheOperations.Add(ctx, 1,
			metric.WithAttributes(append(attrs, attribute.String("cache.status", status))...),
		)
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("cache."+i.name+"."+operation+".status", status),
		attribute.Float64("cache."+i.name+"."+operation+".duration", duration.Seconds()),
	)
}
