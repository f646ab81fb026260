// Package registry routes target URLs to provider scrapers and owns their
// lifecycle. Scrapers are built on first use, cached, and disposed when
// evicted or when the registry shuts down.
package registry

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/extract"
	"travel-content-scraper/internal/scraper"
)

// maxCachedScrapers bounds live browser sessions; least recently used
// providers are disposed first.
const maxCachedScrapers = 8

// Provider pairs hostname patterns with a configuration and an extractor.
// The first provider whose pattern matches the hostname wins.
type Provider struct {
	Key       string
	Hosts     []string
	Config    func() *config.ScraperConfig
	Extractor func(cfg *config.ScraperConfig, log zerolog.Logger) extract.Extractor
}

// DefaultProviders returns the built-in provider table, in match order.
func DefaultProviders() []Provider {
	activity := func(cfg *config.ScraperConfig, log zerolog.Logger) extract.Extractor {
		return extract.NewActivityExtractor(cfg, log)
	}
	return []Provider{
		{
			Key:       "getyourguide",
			Hosts:     []string{"getyourguide"},
			Config:    config.GetYourGuideConfig,
			Extractor: activity,
		},
		{
			Key:       "viator",
			Hosts:     []string{"viator"},
			Config:    config.ViatorConfig,
			Extractor: activity,
		},
		{
			Key:    "booking",
			Hosts:  []string{"booking.com", "booking."},
			Config: config.BookingConfig,
			Extractor: func(cfg *config.ScraperConfig, log zerolog.Logger) extract.Extractor {
				return extract.NewAccommodationExtractor(cfg, log)
			},
		},
		{
			Key:    "tripadvisor",
			Hosts:  []string{"tripadvisor"},
			Config: config.TripAdvisorConfig,
			Extractor: func(cfg *config.ScraperConfig, log zerolog.Logger) extract.Extractor {
				return extract.NewDestinationExtractor(cfg, log)
			},
		},
	}
}

// Registry maps URLs to live scrapers. Construct one per process; there is
// no ambient instance.
type Registry struct {
	providers []Provider
	metrics   *scraper.Metrics
	log       zerolog.Logger

	// ConfigHook, when set before the first GetScraper call, adjusts every
	// configuration the registry builds (e.g. forcing the HTTP fetch path).
	ConfigHook func(*config.ScraperConfig)

	// mu serializes construction so two callers racing on the same key
	// never build (and leak) two browser sessions.
	mu    sync.Mutex
	cache *lru.Cache[string, *scraper.Scraper]
}

// New builds a registry over the given provider table. A nil table selects
// DefaultProviders.
func New(providers []Provider, metrics *scraper.Metrics, log zerolog.Logger) (*Registry, error) {
	if providers == nil {
		providers = DefaultProviders()
	}
	r := &Registry{providers: providers, metrics: metrics, log: log}

	cache, err := lru.NewWithEvict[string, *scraper.Scraper](maxCachedScrapers, func(key string, s *scraper.Scraper) {
		log.Info().Str("provider", key).Msg("disposing evicted scraper")
		s.Dispose()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// GetScraper returns the scraper responsible for a URL, building it on
// first use. Repeated calls for the same provider return the same instance.
func (r *Registry) GetScraper(rawURL string) (*scraper.Scraper, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("cannot route URL %q: no host", rawURL)
	}
	host := strings.ToLower(parsed.Hostname())

	provider, matched := r.match(host)
	key := provider.Key
	if !matched {
		// One generic scraper per host keeps throttling per-site.
		key = "generic:" + host
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.cache.Get(key); ok {
		return s, nil
	}

	var cfg *config.ScraperConfig
	if matched {
		cfg = provider.Config()
	} else {
		cfg = config.GenericConfig(parsed.Scheme + "://" + parsed.Host)
	}
	if r.ConfigHook != nil {
		r.ConfigHook(cfg)
	}
	s, err := scraper.New(cfg, provider.Extractor(cfg, r.log), r.metrics, r.log)
	if err != nil {
		return nil, err
	}

	r.cache.Add(key, s)
	r.log.Info().Str("provider", key).Str("host", host).Msg("scraper created")
	return s, nil
}

// match finds the first provider whose host pattern is a substring of the
// hostname. The fallback pairs the generic extractor with a generic config.
func (r *Registry) match(host string) (Provider, bool) {
	for _, provider := range r.providers {
		for _, pattern := range provider.Hosts {
			if strings.Contains(host, pattern) {
				return provider, true
			}
		}
	}
	generic := Provider{
		Key: "generic",
		Extractor: func(cfg *config.ScraperConfig, log zerolog.Logger) extract.Extractor {
			return extract.NewGenericExtractor(cfg, log)
		},
	}
	return generic, false
}

// DisposeAll disposes every cached scraper concurrently, then empties the
// cache. The registry remains usable afterwards.
func (r *Registry) DisposeAll() {
	keys := r.cache.Keys()
	var g errgroup.Group
	for _, key := range keys {
		s, ok := r.cache.Peek(key)
		if !ok {
			continue
		}
		key := key
		g.Go(func() error {
			s.Dispose()
			r.log.Debug().Str("provider", key).Msg("scraper disposed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error().Err(err).Msg("dispose failed")
	}
	// Purge re-disposes via the evict callback; Dispose is idempotent.
	r.cache.Purge()
}

// Len reports how many scrapers are currently cached.
func (r *Registry) Len() int { return r.cache.Len() }
