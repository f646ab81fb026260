// Package scraper orchestrates one provider's scraping pipeline: admission
// control, page loading through the browser session or the plain HTTP path,
// and content extraction into structured results.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"travel-content-scraper/internal/browser"
	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/extract"
	"travel-content-scraper/internal/limiter"
	"travel-content-scraper/internal/models"
)

// Scraper runs scrape operations for one provider configuration. Safe for
// concurrent use; all throttling state lives in the limiter.
type Scraper struct {
	cfg       *config.ScraperConfig
	limiter   *limiter.Limiter
	session   *browser.Session
	fetcher   *Fetcher
	extractor extract.Extractor
	metrics   *Metrics
	log       zerolog.Logger
}

// New validates the configuration and assembles the pipeline. The extractor
// decides what the scraper produces; the configuration decides how pages
// are fetched and how hard the target site is hit.
func New(cfg *config.ScraperConfig, extractor extract.Extractor, metrics *Metrics, log zerolog.Logger) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", cfg.Name, err)
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}

	log = log.With().Str("scraper", cfg.Name).Logger()
	lim := limiter.New(limiter.Options{
		MaxConcurrent:  cfg.Throttle.MaxConcurrent,
		RequestDelay:   cfg.Throttle.RequestDelay,
		MaxRetries:     cfg.Throttle.MaxRetries,
		RetryDelay:     cfg.Throttle.RetryDelay,
		ReservoirSize:  cfg.Throttle.RequestsPerMinute,
		RefillInterval: time.Minute,
		StatusInterval: time.Minute,
	}, log)

	return &Scraper{
		cfg:       cfg,
		limiter:   lim,
		session:   browser.NewSession(cfg.Browser, log),
		fetcher:   NewFetcher(cfg.Browser, cfg.Throttle.Timeout),
		extractor: extractor,
		metrics:   metrics,
		log:       log,
	}, nil
}

// Name returns the provider name this scraper is configured for.
func (s *Scraper) Name() string { return s.cfg.Name }

// ScrapeOne scrapes a single URL. It always returns a result; failures are
// reported inside it, never as a panic or a lost URL.
func (s *Scraper) ScrapeOne(ctx context.Context, rawURL string) *models.ScrapeResult {
	start := time.Now()
	result := &models.ScrapeResult{
		Meta: models.ResultMeta{URL: rawURL, ScrapedAt: start},
	}

	if err := validateTargetURL(rawURL); err != nil {
		s.log.Error().Err(err).Str("url", rawURL).Msg("scrape_error")
		s.metrics.IncError(models.ErrorTypeLabel(err))
		s.metrics.IncScrape("invalid")
		result.Errors = append(result.Errors, err.Error())
		result.Meta.ProcessingTime = time.Since(start)
		return result
	}

	s.log.Info().Str("url", rawURL).Msg("scrape_start")

	var html string
	err := s.limiter.Schedule(ctx, 0, func(jobCtx context.Context) error {
		var loadErr error
		html, loadErr = s.loadPage(jobCtx, rawURL)
		return loadErr
	})
	s.updateLimiterGauges()

	if err != nil {
		s.log.Error().Err(err).Str("url", rawURL).
			Str("error_type", models.ErrorTypeLabel(err)).Msg("scrape_error")
		s.metrics.IncError(models.ErrorTypeLabel(err))
		s.metrics.IncScrape("error")
		result.Errors = append(result.Errors, err.Error())
		result.Meta.ProcessingTime = time.Since(start)
		return result
	}

	records := s.extractor.Extract(extract.Parse(html), rawURL)

	result.Success = true
	result.Data = records
	result.Meta.ItemsFound = len(records)
	result.Meta.PagesCrawled = 1
	result.Meta.ProcessingTime = time.Since(start)

	s.metrics.IncScrape("success")
	s.metrics.AddItems(len(records))
	s.metrics.ObserveDuration(result.Meta.ProcessingTime)
	s.log.Info().Str("url", rawURL).Int("items", len(records)).
		Dur("duration", result.Meta.ProcessingTime).Msg("scrape_complete")
	return result
}

// ScrapeMany scrapes URLs sequentially in input order. Every URL gets
// exactly one result; a failing URL never aborts the rest. Spacing between
// requests is the limiter's job.
func (s *Scraper) ScrapeMany(ctx context.Context, urls []string) []*models.ScrapeResult {
	results := make([]*models.ScrapeResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, s.ScrapeOne(ctx, u))
	}
	return results
}

// ScrapePaginated follows the configured next-page selector from startURL,
// accumulating records until maxPages or the trail ends. Records from pages
// scraped before a mid-trail failure are kept.
func (s *Scraper) ScrapePaginated(ctx context.Context, startURL string, maxPages int) *models.ScrapeResult {
	start := time.Now()
	result := &models.ScrapeResult{
		Meta: models.ResultMeta{URL: startURL, ScrapedAt: start},
	}

	if err := validateTargetURL(startURL); err != nil {
		s.metrics.IncError(models.ErrorTypeLabel(err))
		s.metrics.IncScrape("invalid")
		result.Errors = append(result.Errors, err.Error())
		result.Meta.ProcessingTime = time.Since(start)
		return result
	}
	if maxPages < 1 {
		maxPages = 1
	}

	s.log.Info().Str("url", startURL).Int("max_pages", maxPages).Msg("scrape_start")

	pageURL := startURL
	for page := 0; page < maxPages && pageURL != ""; page++ {
		var html string
		err := s.limiter.Schedule(ctx, 0, func(jobCtx context.Context) error {
			var loadErr error
			html, loadErr = s.loadPage(jobCtx, pageURL)
			return loadErr
		})
		s.updateLimiterGauges()
		if err != nil {
			s.log.Error().Err(err).Str("url", pageURL).Int("page", page+1).Msg("scrape_error")
			s.metrics.IncError(models.ErrorTypeLabel(err))
			result.Errors = append(result.Errors, err.Error())
			break
		}

		doc := extract.Parse(html)
		result.Data = append(result.Data, s.extractor.Extract(doc, pageURL)...)
		result.Meta.PagesCrawled++
		pageURL = doc.NextPageURL(s.cfg.Selectors[config.SelNextPage], pageURL)
	}

	result.Success = result.Meta.PagesCrawled > 0
	result.Meta.ItemsFound = len(result.Data)
	result.Meta.ProcessingTime = time.Since(start)
	if result.Success {
		s.metrics.IncScrape("success")
		s.metrics.AddItems(len(result.Data))
		s.metrics.ObserveDuration(result.Meta.ProcessingTime)
		s.log.Info().Str("url", startURL).Int("items", len(result.Data)).
			Int("pages", result.Meta.PagesCrawled).
			Dur("duration", result.Meta.ProcessingTime).Msg("scrape_complete")
	} else {
		s.metrics.IncScrape("error")
	}
	return result
}

// loadPage fetches one page's markup within the configured timeout, through
// the browser unless it is disabled.
func (s *Scraper) loadPage(ctx context.Context, pageURL string) (string, error) {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Throttle.Timeout)
	defer cancel()

	if s.cfg.Browser.Disabled {
		return s.fetcher.Fetch(navCtx, pageURL)
	}

	page, err := s.session.NavigateTo(navCtx, pageURL)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.ScrollToBottom(navCtx); err != nil {
		// Lazy content may be missing; the loaded markup is still worth
		// extracting.
		s.log.Warn().Err(err).Str("url", pageURL).Msg("scroll failed")
	}
	return page.HTML()
}

// Stats exposes the limiter snapshot for diagnostics.
func (s *Scraper) Stats() limiter.Stats { return s.limiter.Stats() }

// Dispose stops admitting work and releases the browser. Idempotent.
func (s *Scraper) Dispose() {
	s.limiter.Stop()
	s.session.Dispose()
	s.log.Debug().Msg("scraper disposed")
}

func (s *Scraper) updateLimiterGauges() {
	stats := s.limiter.Stats()
	s.metrics.SetLimiterState(stats.Running, stats.Queued)
}

func validateTargetURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &models.InvalidURLError{URL: rawURL, Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &models.InvalidURLError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return &models.InvalidURLError{URL: rawURL, Err: fmt.Errorf("missing host")}
	}
	return nil
}
