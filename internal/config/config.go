// Package config defines the immutable per-scraper configuration: the
// selector map driving extraction, the throttling parameters consumed by the
// admission controller, and the browser options.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// ThrottleConfig bounds how aggressively a scraper may hit its target site.
type ThrottleConfig struct {
	RequestsPerMinute int           // reservoir size per refill window
	MaxConcurrent     int           // concurrency gate width
	RequestDelay      time.Duration // minimum spacing between operation starts
	MaxRetries        int
	RetryDelay        time.Duration // base delay for exponential backoff
	Timeout           time.Duration // hard cap per navigation
}

// BrowserConfig controls the automated browser session.
type BrowserConfig struct {
	Disabled         bool // use the plain HTTP fetch path instead
	Headless         bool
	ViewportWidth    int
	ViewportHeight   int
	BlockedResources []string // resource types blocked to cut load time
	WaitSelector     string   // optional readiness selector after load
	WaitTime         time.Duration
	UserAgents       []string // rotated per page when more than one
	ScreenshotDir    string   // diagnostic screenshots on navigation failure
}

// ScraperConfig is set once at scraper construction and never mutated.
type ScraperConfig struct {
	Name      string
	BaseURL   string
	Selectors map[string]string
	Throttle  ThrottleConfig
	Browser   BrowserConfig

	// RatingScale declares the provider's own rating scale (e.g. 10 for
	// Booking-style scores). Zero means infer from the raw value.
	RatingScale float64
}

// Selector names recognized across the extractors. A missing name or a
// selector that matches nothing leaves the field absent; it is never an error.
const (
	SelContainer      = "container"
	SelTitle          = "title"
	SelDescription    = "description"
	SelPrice          = "price"
	SelRating         = "rating"
	SelReviewCount    = "reviewCount"
	SelImage          = "image"
	SelLink           = "link"
	SelDuration       = "duration"
	SelHighlights     = "highlights"
	SelIncludes       = "includes"
	SelExcludes       = "excludes"
	SelMeetingPoint   = "meetingPoint"
	SelCancellation   = "cancellation"
	SelGroupSize      = "groupSize"
	SelAvailability   = "availability"
	SelStarRating     = "starRating"
	SelAmenities      = "amenities"
	SelRoomContainer  = "roomContainer"
	SelRoomName       = "roomName"
	SelRoomPrice      = "roomPrice"
	SelRoomCapacity   = "roomCapacity"
	SelRoomAmenities  = "roomAmenities"
	SelPolicies       = "policies"
	SelAddress        = "address"
	SelAttractions    = "attractions"
	SelOverview       = "overview"
	SelBestTime       = "bestTime"
	SelWeather        = "weather"
	SelNextPage       = "nextPage"
)

// DefaultUserAgents is a small rotation of current desktop user agents.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
}

// DefaultThrottle returns conservative throttling defaults.
func DefaultThrottle() ThrottleConfig {
	return ThrottleConfig{
		RequestsPerMinute: 20,
		MaxConcurrent:     2,
		RequestDelay:      2 * time.Second,
		MaxRetries:        3,
		RetryDelay:        time.Second,
		Timeout:           30 * time.Second,
	}
}

// DefaultBrowser returns browser defaults tuned for listing pages.
func DefaultBrowser() BrowserConfig {
	return BrowserConfig{
		Headless:         true,
		ViewportWidth:    1366,
		ViewportHeight:   900,
		BlockedResources: []string{"image", "font", "media"},
		WaitTime:         2 * time.Second,
		UserAgents:       DefaultUserAgents,
	}
}

// Validate ensures all configuration values are coherent. It runs once at
// scraper construction.
func (c *ScraperConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("scraper name cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if c.Throttle.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive")
	}
	if c.Throttle.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive")
	}
	if c.Throttle.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if c.Throttle.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Throttle.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.Throttle.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if !c.Browser.Disabled {
		if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
			return fmt.Errorf("viewport dimensions must be positive")
		}
	}
	if c.RatingScale < 0 {
		return fmt.Errorf("rating scale cannot be negative")
	}
	return nil
}
