package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is the log level used for request log entries. It sits above the
// standard levels so request entries are written regardless of the configured
// level.
const Level = zerolog.Level(20)

// LevelName is the name written for Level in log output.
const LevelName = "audit"

type key struct{}

// Entry is the request log record. Handlers and resolvers fill in the content
// fields as the request progresses; the middleware writes it once the request
// completes.
type Entry struct {
	Method    string
	Path      string
	Status    int
	SourceIP  string
	UserAgent string

	ContentKey    string
	ContentSource string
	Cached        bool
	UserID        int64

	Error string
}

// Begin records the request attributes.
func (e *Entry) Begin(r *http.Request) {
	e.Method = r.Method
	e.Path = r.URL.Path
	e.UserAgent = r.UserAgent()

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	e.SourceIP = host
}

// End returns a function intended to be deferred: it writes the entry to the
// log, including when the handler panics. A panic is recorded in the entry's
// error and then re-raised.
func (e *Entry) End(ctx context.Context) func() {
	return func() {
		if r := recover(); r != nil {
			if e.Error != "" {
				e.Error += "; "
			}
			e.Error += fmt.Sprintf("panic: %v", r)

			defer panic(r)
		}

		if e.Status == 0 {
			e.Status = http.StatusOK
		}

		log.Ctx(ctx).WithLevel(Level).EmbedObject(e).Msg("request")
	}
}

func (e *Entry) MarshalZerologObject(ev *zerolog.Event) {
	NewOptionalEvent(nil).
		Str("method", e.Method).
		Str("path", e.Path).
		Int("status", e.Status).
		Str("sourceIP", e.SourceIP).
		Str("userAgent", e.UserAgent).
		Set(ev, "request")

	content := NewOptionalEvent(nil).
		Str("key", e.ContentKey).
		Str("source", e.ContentSource).
		Int64("userID", e.UserID)
	if e.ContentSource != "" {
		content.Bool("cached", e.Cached)
	}
	content.Set(ev, "content")

	if e.Error != "" {
		ev.Str("error", e.Error)
	}
}

// Context returns the entry stored in ctx, creating and attaching a new one
// if there is none.
func Context(ctx context.Context) (context.Context, *Entry) {
	if entry, ok := ctx.Value(key{}).(*Entry); ok {
		return ctx, entry
	}

	entry := &Entry{}
	return context.WithValue(ctx, key{}, entry), entry
}

// Log returns the entry for the current request. Outside of the middleware
// it returns a detached entry, so callers can always write to it.
func Log(ctx context.Context) *Entry {
	_, entry := Context(ctx)
	return entry
}

// Middleware writes a request log entry for every request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, entry := Context(r.Context())
			entry.Begin(r)
			defer entry.End(ctx)()

			next.ServeHTTP(&statusWriter{ResponseWriter: w, entry: entry}, r.WithContext(ctx))
		})
	}
}

// statusWriter captures the response status into the entry.
type statusWriter struct {
	http.ResponseWriter
	entry       *Entry
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.entry.Status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
