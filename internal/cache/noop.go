package cache

import "context"

// Noop never stores anything: every Get is a miss. It is used when caching is
// disabled, so that every request walks the provider chain.
type Noop[T any] struct{}

func NewNoop[T any]() *Noop[T] {
	return &Noop[T]{}
}

func (Noop[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (Noop[T]) Set(ctx context.Context, key string, value T) error {
	return nil
}

func (Noop[T]) Invalidate(ctx context.Context, key string) error {
	return nil
}

func (Noop[T]) Close() error {
	return nil
}
