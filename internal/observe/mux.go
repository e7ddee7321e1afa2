package observe

import (
	"net/http"
	"slices"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Multiplexer interface {
	Handle(pattern string, handler http.Handler)
	http.Handler
}

// Mux registers every route with server telemetry, named after the route
// pattern rather than the concrete path so that /api/horoscope/leo and
// /api/horoscope/virgo share a span name.
type Mux struct {
	wrapped Multiplexer
}

func NewMux(wrapped Multiplexer) *Mux {
	return &Mux{
		wrapped: wrapped,
	}
}

func (mux *Mux) Handle(pattern string, handler http.Handler) {
	instrumented := otelhttp.NewHandler(
		handler,
		RouteName(pattern),
		otelhttp.WithFilter(notPreflight),
	)

	mux.wrapped.Handle(pattern, instrumented)
}

func (mux *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux.wrapped.ServeHTTP(w, r)
}

// notPreflight excludes CORS preflight requests from telemetry: browsers send
// one ahead of most API calls.
func notPreflight(r *http.Request) bool {
	return r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == ""
}

var methods = []string{
	http.MethodConnect,
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
	http.MethodTrace,
}

// RouteName strips the method from a ServeMux pattern, leaving the path.
func RouteName(pattern string) string {
	method, resource, hasMethod := strings.Cut(pattern, " ")
	if hasMethod && slices.Contains(methods, method) {
		return resource
	}
	return pattern
}
