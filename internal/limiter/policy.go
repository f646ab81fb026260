package limiter

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"travel-content-scraper/internal/models"
)

// RetryPolicy decides, given the failure and the zero-based attempt number,
// how long to wait before the next attempt and whether to retry at all. It
// is invoked synchronously by the scheduler on each failure.
type RetryPolicy func(err error, attempt int) (time.Duration, bool)

// Status-code-aware delay floors. The exponential term is added on top.
const (
	rateLimitedFloor = 5 * time.Second // HTTP 429
	upstreamFloor    = 3 * time.Second // HTTP 502/503/504
	maxJitter        = 1000            // milliseconds
)

// DefaultRetryPolicy returns the standard policy: base × 2^attempt plus
// uniform jitter, clamped to a status-aware floor for throttling and
// upstream-unavailable responses. Canceled work is never retried.
func DefaultRetryPolicy(base time.Duration) RetryPolicy {
	if base <= 0 {
		base = time.Second
	}
	return func(err error, attempt int) (time.Duration, bool) {
		// Per-navigation deadline expiry stays retryable; only a canceled
		// caller stops the retry loop.
		if errors.Is(err, context.Canceled) {
			return 0, false
		}

		var floor time.Duration
		switch models.StatusCode(err) {
		case http.StatusTooManyRequests:
			floor = rateLimitedFloor
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			floor = upstreamFloor
		}

		delay := floor + base*(1<<attempt) + time.Duration(rand.Intn(maxJitter))*time.Millisecond
		return delay, true
	}
}
