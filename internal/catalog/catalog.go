package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/cache"
	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/gnome-horoscope/gnome-bridge/internal/fallback"
	"github.com/gnome-horoscope/gnome-bridge/internal/genai"
	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/gnome-horoscope/gnome-bridge/internal/provider"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/rs/zerolog/log"
)

// Key families served by the catalog.
const (
	FamilyHoroscope = "horoscope"
	FamilyMoon      = "moon"
)

const (
	moonItemSelector = ".moon-phase__item, .moon__item"
	moonMaxLength    = 2000
)

// Options carries the dependencies shared by all providers.
type Options struct {
	// HTTPClient is used for all upstream calls. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Catalog holds the configured resolvers and the services built around them.
type Catalog struct {
	Horoscope *resolver.Resolver
	Moon      *resolver.Resolver
	DayCards  *horoscope.DayCardDealer
	GenAI     *genai.Client
	Fallbacks *fallback.Store

	resolvers map[string]*resolver.Resolver
	closers   []func() error
}

// New builds every resolver from configuration.
func New(cfg config.Config, opts Options) (*Catalog, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	entries, err := loadFallbacks(cfg.Resolver)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		GenAI:     genai.NewClient(cfg.GenAI),
		Fallbacks: fallback.NewStore(entries),
		resolvers: map[string]*resolver.Resolver{},
	}
	if opts.HTTPClient != nil {
		c.GenAI.HTTP = opts.HTTPClient
	}

	var transform resolver.Transform
	if cfg.Horoscope.Decorate {
		transform = resolver.Chain(
			resolver.Prefix(horoscope.DecorationPrefix),
			resolver.Suffix(horoscope.DecorationSuffix),
		)
	}

	horoscopeProviders, err := c.horoscopeProviders(cfg.Horoscope, opts)
	if err != nil {
		return nil, err
	}
	c.Horoscope, err = c.newResolver(cfg, FamilyHoroscope, cfg.Horoscope.CacheTTL(), transform, opts.Clock, horoscopeProviders)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	moonProviders, err := c.moonProviders(cfg.Moon, opts)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	c.Moon, err = c.newResolver(cfg, FamilyMoon, cfg.Moon.CacheTTL(), nil, opts.Clock, moonProviders)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	cards, err := cache.NewFromConfig[horoscope.DayCard](cfg.Cache, "daycard", horoscope.DayCardTTL)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("day card cache: %w", err), c.Close())
	}
	c.closers = append(c.closers, cards.Close)
	c.DayCards = horoscope.NewDayCardDealer(cards, opts.Clock)

	return c, nil
}

// Resolver returns the resolver serving a key family.
func (c *Catalog) Resolver(family string) (*resolver.Resolver, bool) {
	r, ok := c.resolvers[family]
	return r, ok
}

// Close releases the caches.
func (c *Catalog) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Catalog) newResolver(
	cfg config.Config,
	family string,
	ttl time.Duration,
	transform resolver.Transform,
	clock func() time.Time,
	providers []resolver.Provider,
) (*resolver.Resolver, error) {
	contentCache, err := cache.NewFromConfig[resolver.CacheEntry](cfg.Cache, family, ttl)
	if err != nil {
		return nil, fmt.Errorf("%s cache: %w", family, err)
	}
	c.closers = append(c.closers, contentCache.Close)

	r, err := resolver.New(resolver.Config{
		Name:            family,
		TTL:             ttl,
		ProviderTimeout: cfg.Resolver.ProviderTimeout(),
		Deadline:        cfg.Resolver.Deadline(),
		Transform:       transform,
		SingleFlight:    cfg.Resolver.SingleFlight,
		Clock:           clock,
	}, contentCache, c.Fallbacks, providers...)
	if err != nil {
		return nil, err
	}

	if _, ok := c.Fallbacks.Fallback(resolver.NewKey(family)); !ok {
		log.Warn().Str("family", family).Msg("no fallback configured: requests will fail when every provider is down")
	}

	log.Info().
		Str("resolver", family).
		Strs("providers", r.Providers()).
		Dur("ttl", ttl).
		Msg("resolver configured")

	c.resolvers[family] = r

	return r, nil
}

func (c *Catalog) horoscopeProviders(cfg config.HoroscopeConfig, opts Options) ([]resolver.Provider, error) {
	providers := make([]resolver.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case "aztro":
			providers = append(providers, provider.NewAztro(cfg.AztroURL, opts.HTTPClient, opts.Clock))
		case "scrape":
			providers = append(providers, provider.NewScraper(provider.ScraperConfig{
				URL:          cfg.ScrapeURL,
				MainSelector: cfg.ScrapeSelector,
			}, opts.HTTPClient, opts.Clock))
		case "generative":
			providers = append(providers, provider.NewGenerative(c.GenAI, horoscopePrompt))
		case "template":
			providers = append(providers, provider.NewTemplate(horoscope.Templates))
		default:
			return nil, fmt.Errorf("unknown horoscope provider %q", name)
		}
	}
	return providers, nil
}

func (c *Catalog) moonProviders(cfg config.MoonConfig, opts Options) ([]resolver.Provider, error) {
	providers := make([]resolver.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case "scrape":
			providers = append(providers, provider.NewScraper(provider.ScraperConfig{
				URL:           cfg.ScrapeURL,
				ItemSelector:  moonItemSelector,
				TitleSelector: "h3",
				TextSelector:  "p",
				MainSelector:  "main",
				MaxLength:     moonMaxLength,
			}, opts.HTTPClient, opts.Clock))
		case "calc":
			providers = append(providers, provider.NewMoonCalc(opts.Clock))
		default:
			return nil, fmt.Errorf("unknown moon provider %q", name)
		}
	}
	return providers, nil
}

func horoscopePrompt(key resolver.ContentKey) string {
	name := key.Value()
	if sign, err := horoscope.ParseSign(name); err == nil {
		name = sign.Name
	}

	date := "сегодня"
	if day, ok := key.Date(); ok {
		date = day.Format("02.01.2006")
	}

	return fmt.Sprintf(
		"Ты мудрый гном-астролог. Напиши короткий доброжелательный гороскоп для знака %s на %s. Не больше трех предложений, без заголовков.",
		name, date,
	)
}

func loadFallbacks(cfg config.ResolverConfig) (fallback.Entries, error) {
	if cfg.FallbackFile == "" {
		return fallback.Default()
	}

	entries, err := fallback.LoadFile(cfg.FallbackFile)
	if err != nil {
		return fallback.Entries{}, fmt.Errorf("fallback file %s: %w", cfg.FallbackFile, err)
	}

	log.Info().Str("path", cfg.FallbackFile).Str("digest", entries.Digest()).Msg("fallback content loaded from file")

	return entries, nil
}
