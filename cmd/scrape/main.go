// Command scrape runs the travel content scraping engine against one or
// more listing URLs and writes the structured results to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/logging"
	"travel-content-scraper/internal/models"
	"travel-content-scraper/internal/registry"
	"travel-content-scraper/internal/scraper"
)

func main() {
	urlList := flag.String("urls", "", "Comma-separated list of URLs to scrape")
	paginate := flag.Int("pages", 1, "Follow pagination up to this many pages per URL")
	noBrowser := flag.Bool("no-browser", false, "Use the plain HTTP fetch path instead of the browser")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	logFile := flag.String("log-file", "", "Rotating log file path")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall run deadline")
	flag.Parse()

	urls := splitURLs(*urlList)
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "no URLs given; use -urls=https://...,https://...")
		flag.Usage()
		os.Exit(2)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logging.New(logging.Options{Level: level, File: *logFile, Console: true})

	metrics := scraper.NewMetrics()
	reg, err := registry.New(nil, metrics, logging.Component(log, "registry"))
	if err != nil {
		log.Fatal().Err(err).Msg("registry setup failed")
	}
	if *noBrowser {
		reg.ConfigHook = func(cfg *config.ScraperConfig) { cfg.Browser.Disabled = true }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var metricsServer *http.Server
	if *metricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    *metricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		log.Info().Str("addr", *metricsAddr).Msg("metrics server enabled")
	}

	results := run(ctx, reg, urls, *paginate, log)

	reg.DisposeAll()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("metrics server shutdown failed")
		}
		shutdownCancel()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Fatal().Err(err).Msg("encoding results failed")
	}

	for _, result := range results {
		if !result.Success {
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, reg *registry.Registry, urls []string, pages int, log zerolog.Logger) []*models.ScrapeResult {
	results := make([]*models.ScrapeResult, 0, len(urls))
	for _, target := range urls {
		s, err := reg.GetScraper(target)
		if err != nil {
			log.Error().Err(err).Str("url", target).Msg("routing failed")
			results = append(results, &models.ScrapeResult{
				Errors: []string{err.Error()},
				Meta:   models.ResultMeta{URL: target, ScrapedAt: time.Now()},
			})
			continue
		}
		if pages > 1 {
			results = append(results, s.ScrapePaginated(ctx, target, pages))
		} else {
			results = append(results, s.ScrapeOne(ctx, target))
		}
	}
	return results
}

func splitURLs(list string) []string {
	var urls []string
	for _, part := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
