package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

const (
	maxRedirects   = 5
	fetchSizeLimit = 10 << 20 // bytes
)

// Fetcher is the plain HTTP path used when the browser is disabled. It does
// no retrying of its own; the admission controller owns retry scheduling.
type Fetcher struct {
	client     *http.Client
	userAgents []string
	uaIndex    atomic.Uint64
}

func NewFetcher(cfg config.BrowserConfig, timeout time.Duration) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	userAgents := cfg.UserAgents
	if len(userAgents) == 0 {
		userAgents = config.DefaultUserAgents
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgents: userAgents,
	}
}

// Fetch retrieves the page markup. Error statuses come back as HTTPError so
// the retry policy can read the code.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	f.setRequestHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &models.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        targetURL,
			Err:        fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("non-HTML content-type: %s", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchSizeLimit))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

func (f *Fetcher) setRequestHeaders(req *http.Request) {
	index := f.uaIndex.Add(1) - 1
	req.Header.Set("User-Agent", f.userAgents[index%uint64(len(f.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Referer", "https://www.google.com/")
}
