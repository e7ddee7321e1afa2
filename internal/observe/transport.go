package observe

import (
	"context"
	"net/http"
	"net/http/httptrace"

	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPTransport wraps the transport used for upstream calls with client
// spans, and optionally connection-level trace events.
func HTTPTransport(wrapped http.RoundTripper, cfg config.ObserveConfig) http.RoundTripper {
	if !cfg.Enabled || !cfg.HTTPTransportEnabled {
		return wrapped
	}

	var opts []otelhttp.Option
	if cfg.HTTPConnectionTraceEnabled {
		opts = append(opts, otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}))
	}

	return otelhttp.NewTransport(wrapped, opts...)
}
