package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/cache"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	instrumentationName = "github.com/gnome-horoscope/gnome-bridge/internal/resolver"

	defaultProviderTimeout = 10 * time.Second
)

var (
	tracer = otel.Tracer(instrumentationName)

	metricsOnce      sync.Once
	resolverOutcomes metric.Int64Counter
)

func initMetrics() {
	metricsOnce.Do(func() {
		var err error
		resolverOutcomes, err = otel.Meter(instrumentationName).Int64Counter(
			"resolver.outcomes",
			metric.WithDescription("Content resolutions by outcome and source"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// ResolveFunc turns a key into content. (*Resolver).Resolve is the canonical
// implementation; wrappers such as Auditor share the signature.
type ResolveFunc func(ctx context.Context, key ContentKey) (ResolvedContent, error)

type Config struct {
	// Name labels the resolver in logs and metrics.
	Name string

	// TTL is how long a successful resolution is served from the cache.
	TTL time.Duration

	// ProviderTimeout bounds each provider call unless the provider supplies
	// its own timeout.
	ProviderTimeout time.Duration

	// Deadline caps the whole provider walk. Zero leaves only the
	// per-provider bound.
	Deadline time.Duration

	// Transform is applied to provider content before caching.
	Transform Transform

	// SingleFlight collapses concurrent misses for the same key into one
	// provider walk.
	SingleFlight bool

	// Clock is used for expiry and timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Resolver walks an ordered list of providers to produce content for a key,
// caching successes and falling back to static content when every provider
// fails.
type Resolver struct {
	name            string
	ttl             time.Duration
	providerTimeout time.Duration
	deadline        time.Duration
	transform       Transform
	now             func() time.Time

	cache     cache.ContentCache[CacheEntry]
	fallbacks FallbackSource
	providers []Provider
	group     *singleflight.Group
}

// New creates a resolver. Providers are tried in the order given.
func New(cfg Config, c cache.ContentCache[CacheEntry], fallbacks FallbackSource, providers ...Provider) (*Resolver, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("resolver %s: TTL must be positive", cfg.Name)
	}
	if c == nil {
		return nil, fmt.Errorf("resolver %s: cache is required", cfg.Name)
	}

	initMetrics()

	r := &Resolver{
		name:            cfg.Name,
		ttl:             cfg.TTL,
		providerTimeout: cfg.ProviderTimeout,
		deadline:        cfg.Deadline,
		transform:       cfg.Transform,
		now:             cfg.Clock,
		cache:           c,
		fallbacks:       fallbacks,
		providers:       providers,
	}

	if r.providerTimeout <= 0 {
		r.providerTimeout = defaultProviderTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	if cfg.SingleFlight {
		r.group = &singleflight.Group{}
	}

	return r, nil
}

// Name returns the configured resolver name.
func (r *Resolver) Name() string {
	return r.name
}

// Providers returns the names of the configured providers in priority order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve returns content for the key. Provider failures are never returned:
// when all providers fail the fallback is served. The only error is a
// *ConfigurationError when no fallback exists for the key's family.
func (r *Resolver) Resolve(ctx context.Context, key ContentKey) (ResolvedContent, error) {
	ctx, span := tracer.Start(ctx, "resolver.resolve", trace.WithAttributes(
		attribute.String("resolver.name", r.name),
		attribute.String("resolver.key", string(key)),
	))
	defer span.End()

	content, err := r.resolve(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		r.recordOutcome(ctx, "error", "")
		return content, err
	}

	outcome := "provider"
	switch {
	case content.Cached:
		outcome = "hit"
	case content.Source == SourceFallback:
		outcome = "fallback"
	}

	span.SetAttributes(
		attribute.String("resolver.source", content.Source),
		attribute.Bool("resolver.cached", content.Cached),
	)
	r.recordOutcome(ctx, outcome, content.Source)

	return content, nil
}

func (r *Resolver) resolve(ctx context.Context, key ContentKey) (ResolvedContent, error) {
	if content, ok := r.lookup(ctx, key); ok {
		return content, nil
	}

	if r.group == nil {
		return r.walk(ctx, key)
	}

	// The walk is shared by every caller waiting on the key, so it must not
	// stop when the caller that started it goes away. Deadline still bounds it.
	walkCtx := context.WithoutCancel(ctx)

	results := r.group.DoChan(string(key), func() (any, error) {
		// a concurrent walk may have completed since the first lookup
		if content, ok := r.lookup(walkCtx, key); ok {
			return content, nil
		}
		return r.walk(walkCtx, key)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return ResolvedContent{}, res.Err
		}
		if res.Shared {
			log.Ctx(ctx).Debug().Str("resolver", r.name).Str("key", string(key)).Msg("shared in-flight resolution")
		}
		return res.Val.(ResolvedContent), nil

	case <-ctx.Done():
		// the walk carries on for the other callers; this one gets the
		// fallback
		log.Ctx(ctx).Debug().Err(ctx.Err()).Str("resolver", r.name).Str("key", string(key)).Msg("caller gave up waiting for in-flight resolution")
		return r.fallback(ctx, key)
	}
}

// lookup returns the cached content for the key if present and not expired.
// Cache errors are treated as a miss.
func (r *Resolver) lookup(ctx context.Context, key ContentKey) (ResolvedContent, bool) {
	entry, found, err := r.cache.Get(ctx, string(key))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("resolver", r.name).Str("key", string(key)).Msg("cache read failed, treating as miss")
		return ResolvedContent{}, false
	}
	if !found || entry.Expired(r.now()) {
		return ResolvedContent{}, false
	}

	content := entry.Value
	content.Cached = true

	log.Ctx(ctx).Debug().Str("resolver", r.name).Str("key", string(key)).Str("source", content.Source).Msg("hit: cached content found")

	return content, true
}

// walk tries each provider in order, returning the first success or the
// fallback.
func (r *Resolver) walk(ctx context.Context, key ContentKey) (ResolvedContent, error) {
	walkCtx := ctx
	if r.deadline > 0 {
		var cancel context.CancelFunc
		walkCtx, cancel = context.WithTimeout(ctx, r.deadline)
		defer cancel()
	}

	for _, p := range r.providers {
		text, err := r.fetch(walkCtx, p, key)
		if err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("resolver", r.name).
				Str("provider", p.Name()).
				Str("key", string(key)).
				Msg("provider failed, trying next")
			continue
		}

		if r.transform != nil {
			text = r.transform(text)
		}

		now := r.now()
		content := ResolvedContent{
			Text:       text,
			Source:     p.Name(),
			ObtainedAt: now,
		}
		r.store(ctx, key, content, now)

		log.Ctx(ctx).Info().Str("resolver", r.name).Str("provider", p.Name()).Str("key", string(key)).Msg("miss: content resolved from provider")

		return content, nil
	}

	return r.fallback(ctx, key)
}

// fetch calls a single provider, bounded by its timeout. The call runs on its
// own goroutine so that a provider ignoring its context cannot hold up the
// walk past the timeout.
func (r *Resolver) fetch(ctx context.Context, p Provider, key ContentKey) (string, error) {
	timeout := r.providerTimeout
	if tp, ok := p.(TimeoutProvider); ok && tp.Timeout() > 0 {
		timeout = tp.Timeout()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("provider panic: %v", rec)}
			}
		}()

		text, err := p.Fetch(ctx, key)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", &ProviderError{Provider: p.Name(), Err: res.err}
		}

		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", &ProviderError{Provider: p.Name(), Err: ErrEmptyContent}
		}
		return text, nil

	case <-ctx.Done():
		return "", &ProviderError{Provider: p.Name(), Err: ctx.Err()}
	}
}

func (r *Resolver) store(ctx context.Context, key ContentKey, content ResolvedContent, now time.Time) {
	entry := CacheEntry{
		Key:       key,
		Value:     content,
		CreatedAt: now,
		TTL:       r.ttl,
	}

	if err := r.cache.Set(ctx, string(key), entry); err != nil {
		// the content is still good; the next request will walk the providers
		// again
		log.Ctx(ctx).Warn().Err(err).Str("resolver", r.name).Str("key", string(key)).Msg("cache write failed")
	}
}

func (r *Resolver) fallback(ctx context.Context, key ContentKey) (ResolvedContent, error) {
	var (
		text string
		ok   bool
	)
	if r.fallbacks != nil {
		text, ok = r.fallbacks.Fallback(key)
	}

	if !ok {
		err := &ConfigurationError{Resolver: r.name, Family: key.Family()}
		log.Ctx(ctx).Error().Err(err).Str("key", string(key)).Msg("all providers failed and no fallback is configured")
		return ResolvedContent{}, err
	}

	log.Ctx(ctx).Warn().Str("resolver", r.name).Str("key", string(key)).Msg("all providers failed, serving fallback")

	return ResolvedContent{
		Text:       text,
		Source:     SourceFallback,
		ObtainedAt: r.now(),
	}, nil
}

func (r *Resolver) recordOutcome(ctx context.Context, outcome, source string) {
	if resolverOutcomes == nil {
		return
	}
	resolverOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resolver.name", r.name),
		attribute.String("resolver.outcome", outcome),
		attribute.String("resolver.source", source),
	))
}

// IsConfigurationError reports whether err is (or wraps) a missing fallback.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
