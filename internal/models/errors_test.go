package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusCodeWalksChain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "navigation status", err: &NavigationError{URL: "https://x", StatusCode: 503}, expected: 503},
		{name: "http status", err: &HTTPError{URL: "https://x", StatusCode: 404}, expected: 404},
		{
			name:     "wrapped in retries exhausted",
			err:      &RetriesExhaustedError{Attempts: 3, Err: &HTTPError{URL: "https://x", StatusCode: 429}},
			expected: 429,
		},
		{name: "navigation without status", err: &NavigationError{URL: "https://x", Err: errors.New("boom")}, expected: 0},
		{name: "plain error", err: errors.New("boom"), expected: 0},
		{name: "nil", err: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.expected {
				t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestErrorTypeLabel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "none"},
		{name: "rate limited", err: &HTTPError{StatusCode: 429, URL: "https://x"}, expected: "rate_limited"},
		{name: "forbidden", err: &NavigationError{StatusCode: 403, URL: "https://x"}, expected: "forbidden"},
		{name: "not found", err: &HTTPError{StatusCode: 404, URL: "https://x"}, expected: "not_found"},
		{name: "bad gateway", err: &HTTPError{StatusCode: 502, URL: "https://x"}, expected: "upstream_unavailable"},
		{
			name:     "status wins over retries wrapper",
			err:      &RetriesExhaustedError{Attempts: 2, Err: &HTTPError{StatusCode: 503, URL: "https://x"}},
			expected: "upstream_unavailable",
		},
		{
			name:     "retries without status",
			err:      &RetriesExhaustedError{Attempts: 2, Err: errors.New("boom")},
			expected: "retries_exhausted",
		},
		{name: "navigation", err: &NavigationError{URL: "https://x", Err: errors.New("boom")}, expected: "navigation"},
		{name: "extraction", err: &ExtractionError{Step: "record", Err: errors.New("boom")}, expected: "extraction"},
		{name: "invalid url", err: &InvalidURLError{URL: ":::", Err: errors.New("boom")}, expected: "invalid_url"},
		{name: "other", err: errors.New("boom"), expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorTypeLabel(tt.err); got != tt.expected {
				t.Errorf("ErrorTypeLabel(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	inner := errors.New("inner")
	wrappers := []error{
		&NavigationError{URL: "https://x", Err: inner},
		&HTTPError{StatusCode: 500, URL: "https://x", Err: inner},
		&ExtractionError{Step: "record", Err: inner},
		&RetriesExhaustedError{Attempts: 1, Err: inner},
		&InvalidURLError{URL: "x", Err: inner},
	}
	for _, wrapper := range wrappers {
		if !errors.Is(wrapper, inner) {
			t.Errorf("%T does not unwrap to the inner error", wrapper)
		}
		if wrapper.Error() == "" {
			t.Errorf("%T has an empty message", wrapper)
		}
	}
	wrapped := fmt.Errorf("outer: %w", wrappers[0])
	var nav *NavigationError
	if !errors.As(wrapped, &nav) {
		t.Error("NavigationError not found through fmt wrapping")
	}
}
