package models

import (
	"errors"
	"fmt"
)

// NavigationError reports a page that could not be loaded: no response, an
// error status, or a timeout. It aborts only the scrape of its own URL.
type NavigationError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NavigationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("navigation failed for %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("navigation failed for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// HTTPError represents a non-success HTTP response on the plain fetch path.
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %v", e.StatusCode, e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ExtractionError is raised while building a single record. It is caught at
// the per-record boundary, logged and skipped.
type ExtractionError struct {
	Step string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("content extraction failed at %s: %v", e.Step, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// RetriesExhaustedError wraps the final error of an operation that the
// admission controller retried to its configured limit.
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// InvalidURLError reports a target URL that could not be parsed.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %s: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// StatusCode walks the error chain and returns the first HTTP status it
// finds, or 0 when the error carries none.
func StatusCode(err error) int {
	var nav *NavigationError
	if errors.As(err, &nav) && nav.StatusCode != 0 {
		return nav.StatusCode
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// ErrorTypeLabel maps an error to a stable label used for logs and metrics.
func ErrorTypeLabel(err error) string {
	if err == nil {
		return "none"
	}
	switch StatusCode(err) {
	case 429:
		return "rate_limited"
	case 403:
		return "forbidden"
	case 404:
		return "not_found"
	case 502, 503, 504:
		return "upstream_unavailable"
	}
	var retries *RetriesExhaustedError
	if errors.As(err, &retries) {
		return "retries_exhausted"
	}
	var nav *NavigationError
	if errors.As(err, &nav) {
		return "navigation"
	}
	var ext *ExtractionError
	if errors.As(err, &ext) {
		return "extraction"
	}
	var invalid *InvalidURLError
	if errors.As(err, &invalid) {
		return "invalid_url"
	}
	return "other"
}
