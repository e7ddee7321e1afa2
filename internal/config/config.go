package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Cache     CacheConfig
	GenAI     GenAIConfig
	Horoscope HoroscopeConfig
	Moon      MoonConfig
	Observe   ObserveConfig
	Resolver  ResolverConfig
	Server    ServerConfig
	Telegram  TelegramConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=10000"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`

	// AllowedOrigins lists the CORS origins permitted to call the API. A
	// single "*" allows any origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
}

// CacheConfig specifies cache configuration.
type CacheConfig struct {
	// Type selects the cache implementation: "memory" (default) or "none"
	Type string `env:"CACHE_TYPE, default=memory"`

	// MaxSize bounds the number of entries held by each memory cache.
	MaxSize int `env:"CACHE_MAX_SIZE, default=10000"`
}

// ResolverConfig holds settings shared by all content resolvers.
type ResolverConfig struct {
	ProviderTimeoutSeconds int  `env:"RESOLVER_PROVIDER_TIMEOUT_SECS, default=10"`
	DeadlineSeconds        int  `env:"RESOLVER_DEADLINE_SECS, default=25"`
	SingleFlight           bool `env:"RESOLVER_SINGLE_FLIGHT, default=true"`

	// FallbackFile optionally replaces the embedded fallback texts.
	FallbackFile string `env:"RESOLVER_FALLBACK_FILE"`
}

func (c ResolverConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

func (c ResolverConfig) Deadline() time.Duration {
	return time.Duration(c.DeadlineSeconds) * time.Second
}

type HoroscopeConfig struct {
	// Providers is the ordered list of horoscope sources to try.
	Providers       []string `env:"HOROSCOPE_PROVIDERS, default=aztro,scrape,generative"`
	CacheTTLMinutes int      `env:"HOROSCOPE_CACHE_TTL_MINS, default=240"`

	AztroURL       string `env:"HOROSCOPE_AZTRO_URL, default=https://aztro.sameerkumar.website/"`
	ScrapeURL      string `env:"HOROSCOPE_SCRAPE_URL, default=https://horo.mail.ru/prediction/{value}/today/"`
	ScrapeSelector string `env:"HOROSCOPE_SCRAPE_SELECTOR, default=main article p"`

	// Decorate wraps provider text in the gnome voice before caching.
	Decorate bool `env:"HOROSCOPE_DECORATE, default=true"`
}

func (c HoroscopeConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

type MoonConfig struct {
	Providers       []string `env:"MOON_PROVIDERS, default=scrape,calc"`
	CacheTTLMinutes int      `env:"MOON_CACHE_TTL_MINS, default=15"`

	ScrapeURL string `env:"MOON_SCRAPE_URL, default=https://my-calend.ru/moon"`
}

func (c MoonConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

type GenAIConfig struct {
	APIKey string `env:"GOOGLE_API_KEY"`
	URL    string `env:"GENAI_URL, default=https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"`
}

type TelegramConfig struct {
	// BotToken verifies WebApp initData. When empty, every day-card request is
	// treated as anonymous.
	BotToken string `env:"BOT_TOKEN"`
}

type ObserveConfig struct {
	SDKLogLevel                string `env:"OBSERVE_OTEL_LOG_LEVEL, default=info"`
	Enabled                    bool   `env:"OBSERVE_ENABLED, default=false"`
	MetricsEnabled             bool   `env:"OBSERVE_METRICS_ENABLED, default=true"`
	Type                       string `env:"OBSERVE_TYPE, default=grpc"`
	ServiceName                string `env:"OBSERVE_SERVICE_NAME, default=gnome-bridge"`
	TraceBatchTimeoutSeconds   int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds  int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`
	HTTPTransportEnabled       bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
	HTTPConnectionTraceEnabled bool   `env:"OBSERVE_CONNECTION_TRACE_ENABLED, default=true"`
}

// Known provider names for each resolver.
var (
	HoroscopeProviders = []string{"aztro", "scrape", "generative", "template"}
	MoonProviders      = []string{"scrape", "calc"}
)

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Cache.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}

	err = cfg.Resolver.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid resolver configuration: %w", err)
	}

	err = validateProviders("HOROSCOPE_PROVIDERS", cfg.Horoscope.Providers, HoroscopeProviders, cfg.Horoscope.CacheTTLMinutes)
	if err != nil {
		return cfg, fmt.Errorf("invalid horoscope configuration: %w", err)
	}

	err = validateProviders("MOON_PROVIDERS", cfg.Moon.Providers, MoonProviders, cfg.Moon.CacheTTLMinutes)
	if err != nil {
		return cfg, fmt.Errorf("invalid moon configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	if c.Type != "memory" && c.Type != "none" {
		return fmt.Errorf("CACHE_TYPE must be memory or none, got %q", c.Type)
	}

	if c.Type == "memory" && c.MaxSize <= 0 {
		return errors.New("CACHE_MAX_SIZE must be positive")
	}

	return nil
}

// Validate checks that the resolver timeouts are usable.
func (c *ResolverConfig) Validate() error {
	if c.ProviderTimeoutSeconds <= 0 {
		return errors.New("RESOLVER_PROVIDER_TIMEOUT_SECS must be positive")
	}

	// zero disables the overall deadline
	if c.DeadlineSeconds < 0 {
		return errors.New("RESOLVER_DEADLINE_SECS must not be negative")
	}

	return nil
}

func validateProviders(variable string, configured, known []string, ttlMinutes int) error {
	if len(configured) == 0 {
		return fmt.Errorf("%s must name at least one provider", variable)
	}

	for _, name := range configured {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%s: unknown provider %q (known: %v)", variable, name, known)
		}
	}

	if ttlMinutes <= 0 {
		return fmt.Errorf("cache TTL for %s must be positive", variable)
	}

	return nil
}
