package resolver

import (
	"context"
	"time"
)

// Provider is a named source of raw content. Providers are stateless and are
// tried in the order they are given to the resolver.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, key ContentKey) (string, error)
}

// TimeoutProvider may be implemented by a Provider that needs a different
// timeout than the resolver default.
type TimeoutProvider interface {
	Timeout() time.Duration
}

// FallbackSource supplies the static content used when all providers fail.
type FallbackSource interface {
	Fallback(key ContentKey) (string, bool)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc struct {
	name  string
	fetch func(ctx context.Context, key ContentKey) (string, error)
}

func NewProviderFunc(name string, fetch func(ctx context.Context, key ContentKey) (string, error)) ProviderFunc {
	return ProviderFunc{name: name, fetch: fetch}
}

func (p ProviderFunc) Name() string {
	return p.name
}

func (p ProviderFunc) Fetch(ctx context.Context, key ContentKey) (string, error) {
	return p.fetch(ctx, key)
}
