package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for one scraping engine. All
// methods are nil-safe so metrics stay optional.
type Metrics struct {
	Registry       *prometheus.Registry
	ScrapesTotal   *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	ItemsTotal     prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
	RunningGauge   prometheus.Gauge
	QueuedGauge    prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	scrapes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_scrapes_total",
			Help: "Total scrape operations by outcome.",
		},
		[]string{"outcome"},
	)
	scrapeDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_scrape_duration_seconds",
			Help:    "End-to-end latency of one scrape operation.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_extracted_total",
			Help: "Total records extracted across all scrapes.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total scrape errors by type.",
		},
		[]string{"error_type"},
	)
	running := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_operations_running",
			Help: "Operations currently admitted by the rate limiter.",
		},
	)
	queued := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_operations_queued",
			Help: "Operations waiting in the rate limiter queue.",
		},
	)

	registry.MustRegister(scrapes, scrapeDuration, items, errorsTotal, running, queued)

	return &Metrics{
		Registry:       registry,
		ScrapesTotal:   scrapes,
		ScrapeDuration: scrapeDuration,
		ItemsTotal:     items,
		ErrorsTotal:    errorsTotal,
		RunningGauge:   running,
		QueuedGauge:    queued,
	}
}

// IncScrape counts one finished scrape by outcome.
func (m *Metrics) IncScrape(outcome string) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records one scrape's end-to-end latency.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

// AddItems counts extracted records.
func (m *Metrics) AddItems(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ItemsTotal.Add(float64(n))
}

// IncError counts one error by its type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetLimiterState mirrors the rate limiter's snapshot into gauges.
func (m *Metrics) SetLimiterState(running, queued int64) {
	if m == nil {
		return
	}
	m.RunningGauge.Set(float64(running))
	m.QueuedGauge.Set(float64(queued))
}
