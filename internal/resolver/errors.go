package resolver

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyContent is reported when a provider returns no usable text.
	ErrEmptyContent = errors.New("provider returned empty content")

	// ErrMissingFallback indicates a key family with no fallback configured.
	ErrMissingFallback = errors.New("no fallback configured")
)

// ProviderError records why a single provider failed. It never escapes the
// resolver: it is logged and the next provider is tried.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConfigurationError is the only error Resolve returns: the key's family has
// no fallback, which is a deployment problem rather than upstream flakiness.
type ConfigurationError struct {
	Resolver string
	Family   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("resolver %s: %v for key family %q", e.Resolver, ErrMissingFallback, e.Family)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrMissingFallback
}

func (e *ConfigurationError) Status() (int, string) {
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
