package registry

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(r.DisposeAll)
	return r
}

func TestGetScraperRoutesByHostname(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		provider string
	}{
		{name: "getyourguide", url: "https://www.getyourguide.com/paris-l16/", provider: "getyourguide"},
		{name: "viator", url: "https://www.viator.com/Paris/d479", provider: "viator"},
		{name: "booking", url: "https://www.booking.com/searchresults.html", provider: "booking"},
		{name: "tripadvisor", url: "https://www.tripadvisor.com/Tourism-g187147", provider: "tripadvisor"},
		{name: "subdomain", url: "https://m.getyourguide.com/rome", provider: "getyourguide"},
	}

	r := newTestRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := r.GetScraper(tt.url)
			if err != nil {
				t.Fatalf("GetScraper(%q): %v", tt.url, err)
			}
			if s.Name() != tt.provider {
				t.Errorf("GetScraper(%q) routed to %q, want %q", tt.url, s.Name(), tt.provider)
			}
		})
	}
}

func TestGetScraperFallsBackToGeneric(t *testing.T) {
	r := newTestRegistry(t)
	s, err := r.GetScraper("https://www.unknown-travel-site.example/tours")
	if err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	if s.Name() != "generic" {
		t.Errorf("unknown host routed to %q, want generic", s.Name())
	}
}

func TestGetScraperMemoizes(t *testing.T) {
	r := newTestRegistry(t)
	first, err := r.GetScraper("https://www.getyourguide.com/paris-l16/")
	if err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	second, err := r.GetScraper("https://www.getyourguide.com/rome-l33/")
	if err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	if first != second {
		t.Error("same provider must return the same scraper instance")
	}
	if r.Len() != 1 {
		t.Errorf("cache holds %d scrapers, want 1", r.Len())
	}
}

func TestGetScraperSeparatesGenericHosts(t *testing.T) {
	r := newTestRegistry(t)
	a, err := r.GetScraper("https://site-a.example/tours")
	if err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	b, err := r.GetScraper("https://site-b.example/tours")
	if err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	if a == b {
		t.Error("different unknown hosts must get separate scrapers")
	}
}

func TestGetScraperRejectsHostlessURL(t *testing.T) {
	r := newTestRegistry(t)
	for _, raw := range []string{"", "not a url", "/relative/path"} {
		if _, err := r.GetScraper(raw); err == nil {
			t.Errorf("GetScraper(%q) succeeded, want routing error", raw)
		}
	}
}

func TestDisposeAllEmptiesCache(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.GetScraper("https://www.viator.com/Paris/d479"); err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	if _, err := r.GetScraper("https://www.booking.com/searchresults.html"); err != nil {
		t.Fatalf("GetScraper: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("cache holds %d scrapers, want 2", r.Len())
	}

	r.DisposeAll()
	if r.Len() != 0 {
		t.Errorf("cache holds %d scrapers after DisposeAll, want 0", r.Len())
	}

	// The registry stays usable and rebuilds on demand.
	if _, err := r.GetScraper("https://www.viator.com/Paris/d479"); err != nil {
		t.Fatalf("GetScraper after DisposeAll: %v", err)
	}
}
