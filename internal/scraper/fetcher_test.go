package scraper

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

func newTestFetcher(transport *httpmock.MockTransport) *Fetcher {
	f := NewFetcher(config.DefaultBrowser(), 5*time.Second)
	f.client.Transport = transport
	return f
}

func TestFetchReturnsBody(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/page",
		htmlResponder("<html><body>ok</body></html>"))

	f := newTestFetcher(transport)
	body, err := f.Fetch(context.Background(), "http://example.test/page")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "<html><body>ok</body></html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchSendsBrowserLikeHeaders(t *testing.T) {
	transport := httpmock.NewMockTransport()
	var got http.Header
	transport.RegisterResponder("GET", "http://example.test/page",
		func(req *http.Request) (*http.Response, error) {
			got = req.Header.Clone()
			resp := httpmock.NewStringResponse(200, "<html></html>")
			resp.Header.Set("Content-Type", "text/html")
			return resp, nil
		})

	f := newTestFetcher(transport)
	if _, err := f.Fetch(context.Background(), "http://example.test/page"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Get("User-Agent") == "" {
		t.Error("User-Agent header not set")
	}
	if got.Get("Accept-Language") == "" {
		t.Error("Accept-Language header not set")
	}
}

func TestFetchClassifiesErrorStatus(t *testing.T) {
	tests := []struct {
		status int
		label  string
	}{
		{status: http.StatusTooManyRequests, label: "rate_limited"},
		{status: http.StatusForbidden, label: "forbidden"},
		{status: http.StatusNotFound, label: "not_found"},
		{status: http.StatusBadGateway, label: "upstream_unavailable"},
	}

	for _, tt := range tests {
		transport := httpmock.NewMockTransport()
		transport.RegisterResponder("GET", "http://example.test/page",
			httpmock.NewStringResponder(tt.status, ""))

		f := newTestFetcher(transport)
		_, err := f.Fetch(context.Background(), "http://example.test/page")
		if err == nil {
			t.Fatalf("status %d: Fetch succeeded", tt.status)
		}
		var httpErr *models.HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != tt.status {
			t.Errorf("status %d: err = %v, want HTTPError with matching code", tt.status, err)
		}
		if got := models.ErrorTypeLabel(err); got != tt.label {
			t.Errorf("status %d: label = %q, want %q", tt.status, got, tt.label)
		}
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	transport := httpmock.NewMockTransport()
	resp := httpmock.NewStringResponse(200, `{"not": "html"}`)
	resp.Header.Set("Content-Type", "application/json")
	transport.RegisterResponder("GET", "http://example.test/api", httpmock.ResponderFromResponse(resp))

	f := newTestFetcher(transport)
	if _, err := f.Fetch(context.Background(), "http://example.test/api"); err == nil {
		t.Error("Fetch accepted a JSON response")
	}
}

func TestFetchRotatesUserAgents(t *testing.T) {
	transport := httpmock.NewMockTransport()
	var agents []string
	transport.RegisterResponder("GET", "http://example.test/page",
		func(req *http.Request) (*http.Response, error) {
			agents = append(agents, req.Header.Get("User-Agent"))
			resp := httpmock.NewStringResponse(200, "<html></html>")
			resp.Header.Set("Content-Type", "text/html")
			return resp, nil
		})

	f := newTestFetcher(transport)
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), "http://example.test/page"); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
	}
	if len(agents) != 3 {
		t.Fatalf("recorded %d agents", len(agents))
	}
	if agents[0] == agents[1] && agents[1] == agents[2] {
		t.Error("user agent never rotated")
	}
}
