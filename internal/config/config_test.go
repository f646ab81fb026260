package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *ScraperConfig {
	return &ScraperConfig{
		Name:      "test",
		BaseURL:   "https://example.com",
		Selectors: map[string]string{SelContainer: ".card"},
		Throttle:  DefaultThrottle(),
		Browser:   DefaultBrowser(),
	}
}

func TestScraperConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScraperConfig)
		wantErr string
	}{
		{
			name:    "empty name",
			mutate:  func(cfg *ScraperConfig) { cfg.Name = "" },
			wantErr: "name",
		},
		{
			name:    "empty base url",
			mutate:  func(cfg *ScraperConfig) { cfg.BaseURL = "" },
			wantErr: "base URL",
		},
		{
			name:    "hostless base url",
			mutate:  func(cfg *ScraperConfig) { cfg.BaseURL = "https://" },
			wantErr: "host",
		},
		{
			name:    "zero max concurrent",
			mutate:  func(cfg *ScraperConfig) { cfg.Throttle.MaxConcurrent = 0 },
			wantErr: "max concurrent",
		},
		{
			name:    "zero requests per minute",
			mutate:  func(cfg *ScraperConfig) { cfg.Throttle.RequestsPerMinute = 0 },
			wantErr: "requests per minute",
		},
		{
			name:    "negative request delay",
			mutate:  func(cfg *ScraperConfig) { cfg.Throttle.RequestDelay = -time.Second },
			wantErr: "request delay",
		},
		{
			name:    "negative max retries",
			mutate:  func(cfg *ScraperConfig) { cfg.Throttle.MaxRetries = -1 },
			wantErr: "max retries",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *ScraperConfig) { cfg.Throttle.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "zero viewport with browser enabled",
			mutate:  func(cfg *ScraperConfig) { cfg.Browser.ViewportWidth = 0 },
			wantErr: "viewport",
		},
		{
			name:    "negative rating scale",
			mutate:  func(cfg *ScraperConfig) { cfg.RatingScale = -5 },
			wantErr: "rating scale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateAllowsDisabledBrowserWithoutViewport(t *testing.T) {
	cfg := validConfig()
	cfg.Browser = BrowserConfig{Disabled: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled browser should skip viewport checks, got %v", err)
	}
}

func TestProviderConfigsValid(t *testing.T) {
	configs := map[string]*ScraperConfig{
		"getyourguide": GetYourGuideConfig(),
		"viator":       ViatorConfig(),
		"booking":      BookingConfig(),
		"tripadvisor":  TripAdvisorConfig(),
		"generic":      GenericConfig(""),
	}
	for name, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s config should validate, got %v", name, err)
		}
		if cfg.Name != name {
			t.Errorf("%s config carries name %q", name, cfg.Name)
		}
	}
}

func TestBookingConfigDeclaresTenPointScale(t *testing.T) {
	if got := BookingConfig().RatingScale; got != 10 {
		t.Errorf("RatingScale = %v, want 10", got)
	}
}
