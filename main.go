package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/audit"
	"github.com/gnome-horoscope/gnome-bridge/internal/catalog"
	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/gnome-horoscope/gnome-bridge/internal/fallback"
	"github.com/gnome-horoscope/gnome-bridge/internal/genai"
	"github.com/gnome-horoscope/gnome-bridge/internal/observe"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/gnome-horoscope/gnome-bridge/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinas/alice"
)

// Request bodies are small JSON documents; anything larger is refused.
const maxRequestBytes = int64(1 << 20) // 1 MB

// fallbackRefreshInterval is how often a fallback file is re-read.
const fallbackRefreshInterval = 5 * time.Minute

func configureServerRoutes(cfg config.Config, cat *catalog.Catalog, now func() time.Time) http.Handler {
	// wrap a mux such that HTTP telemetry is configured by default
	muxWithoutTelemetry := http.NewServeMux()
	mux := observe.NewMux(muxWithoutTelemetry)

	// configure middleware
	auditor := audit.Middleware()
	requestLimiter := maxRequestSize(maxRequestBytes)

	apiRouteMiddleware := alice.New(requestLimiter, auditor)
	standardRouteMiddleware := alice.New(requestLimiter)

	horoscopeResolver := resolver.Auditor(cat.Horoscope.Resolve)
	moonResolver := resolver.Auditor(cat.Moon.Resolve)

	mux.Handle("GET /{$}", apiRouteMiddleware.Then(handleRoot(now)))
	mux.Handle("GET /content/{domainKey}", apiRouteMiddleware.Then(handleContent(cat, now)))

	horoscopeHandler := apiRouteMiddleware.Then(handleHoroscope(horoscopeResolver, now))
	mux.Handle("GET /api/horoscope", horoscopeHandler)
	mux.Handle("GET /api/horoscope/{sign}", horoscopeHandler)

	mux.Handle("GET /api/moon", apiRouteMiddleware.Then(handleMoon(moonResolver, now)))
	mux.Handle("POST /api/horoscope/premium", apiRouteMiddleware.Then(handlePremiumHoroscope(horoscopeResolver, cfg.Telegram.BotToken, now)))
	mux.Handle("POST /api/day-card", apiRouteMiddleware.Then(handleDayCard(cat.DayCards, cfg.Telegram.BotToken)))
	mux.Handle("GET /api/numerology", apiRouteMiddleware.Then(handleNumerology()))
	mux.Handle("GET /api/compatibility", apiRouteMiddleware.Then(handleCompatibility()))
	mux.Handle("GET /api/astro-events", apiRouteMiddleware.Then(handleAstroEvents(now)))
	mux.Handle("POST /api/genai", apiRouteMiddleware.Then(genai.ProxyHandler(cat.GenAI)))
	mux.Handle("/api/", apiRouteMiddleware.Then(handleAPINotFound()))

	// healthchecks are not included in telemetry or the request log
	muxWithoutTelemetry.Handle("GET /healthcheck", standardRouteMiddleware.Then(handleHealthCheck()))

	// CORS wraps the whole mux so that preflights for any route are answered
	// before routing.
	return alice.New(cors(cfg.Server.AllowedOrigins)).Then(mux)
}

func main() {
	configureLogging()

	logBuildInfo()

	err := launchServer()
	if err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func launchServer() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	// configure telemetry, including wrapping default HTTP client
	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}

	http.DefaultTransport = observe.HTTPTransport(
		configureHTTPTransport(cfg.Server),
		cfg.Observe,
	)
	http.DefaultClient = &http.Client{
		Transport: http.DefaultTransport,
	}

	cat, err := catalog.New(cfg, catalog.Options{HTTPClient: http.DefaultClient})
	if err != nil {
		return fmt.Errorf("resolver configuration failed: %w", err)
	}

	if cfg.Resolver.FallbackFile != "" {
		go refreshFallbacks(ctx, cat.Fallbacks, cfg.Resolver.FallbackFile)
	}

	handler := configureServerRoutes(cfg, cat, time.Now)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		MaxHeaderBytes:    20 << 10,         // 20 KB
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	hooks := &server.ShutdownHooks{}
	hooks.AddContext("fallback-refresh", func(context.Context) error {
		cancel()
		return nil
	})
	hooks.AddClose("catalog", cat)
	hooks.AddContext("telemetry", shutdownTelemetry)

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second

	err = server.Serve(ctx, srv, shutdownTimeout, hooks)
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func configureLogging() {
	// Set global level to the minimum: allows the Open Telemetry logging to be
	// configured separately. However, it means that any logger that sets its
	// level will log as this effectively disables the global level.
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// request log entries use a custom level, which needs a name
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		if l == audit.Level {
			return audit.LevelName
		}
		return l.String()
	}

	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.ServerConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	return transport
}

// refreshFallbacks re-reads the fallback file periodically so that texts can
// be changed without a restart.
func refreshFallbacks(ctx context.Context, store *fallback.Store, path string) {
	defer func() {
		if r := recover(); r != nil {
			log.Info().Interface("recover", r).Msg("background fallback refresh failed; will attempt to continue.")
		}
	}()

	for {
		select {
		case <-time.After(fallbackRefreshInterval):
			// continue
		case <-ctx.Done():
			log.Info().Msg("refresh goroutine shutting down gracefully")
			return
		}

		entries, err := fallback.LoadFile(path)
		if err != nil {
			// keep serving the last good texts: the file may be mid-write
			log.Info().Err(err).Str("path", path).Msg("fallback refresh failed, continuing")
			continue
		}

		store.Update(entries)
	}
}
