package config

import "time"

// Provider presets. Selector maps are the observed markup of each site at the
// time of writing; sites change, so treat these as starting points.

// GetYourGuideConfig targets activity listing pages.
func GetYourGuideConfig() *ScraperConfig {
	cfg := &ScraperConfig{
		Name:    "getyourguide",
		BaseURL: "https://www.getyourguide.com",
		Selectors: map[string]string{
			SelContainer:    "[data-test-id='vertical-activity-card'], article.activity-card",
			SelTitle:        "h3, [data-test-id='activity-card-title']",
			SelDescription:  ".activity-card__abstract, p.description",
			SelPrice:        "[data-test-id='activity-price'], .baseline-pricing__value",
			SelRating:       "[data-test-id='rating'], .rating-overall__number",
			SelReviewCount:  ".rating-overall__reviews, [data-test-id='review-count']",
			SelImage:        "img",
			SelLink:         "a",
			SelDuration:     "[data-test-id='activity-duration'], .activity-attribute--duration",
			SelHighlights:   ".highlights li",
			SelIncludes:     ".inclusions li",
			SelExcludes:     ".exclusions li",
			SelMeetingPoint: ".meeting-point",
			SelCancellation: "[data-test-id='cancellation-policy'], .free-cancellation",
			SelGroupSize:    ".group-size",
			SelAvailability: ".availability",
			SelNextPage:     "a[data-test-id='pagination-next'], a[rel='next']",
		},
		Throttle: DefaultThrottle(),
		Browser:  DefaultBrowser(),
	}
	cfg.Browser.WaitSelector = "[data-test-id='vertical-activity-card']"
	return cfg
}

// ViatorConfig targets activity listing pages.
func ViatorConfig() *ScraperConfig {
	cfg := &ScraperConfig{
		Name:    "viator",
		BaseURL: "https://www.viator.com",
		Selectors: map[string]string{
			SelContainer:    "[data-automation='product-list-card'], .product-card",
			SelTitle:        "[data-automation='product-list-card-title'], h2",
			SelDescription:  ".product-card__description",
			SelPrice:        "[data-automation='product-list-card-price'], .price__value",
			SelRating:       ".star-rating, [data-automation='rating']",
			SelReviewCount:  ".review-count",
			SelImage:        "img",
			SelLink:         "a",
			SelDuration:     ".duration, [data-automation='duration']",
			SelCancellation: ".free-cancellation",
			SelNextPage:     "a[aria-label='Next'], a[rel='next']",
		},
		Throttle: DefaultThrottle(),
		Browser:  DefaultBrowser(),
	}
	cfg.Throttle.RequestDelay = 3 * time.Second
	return cfg
}

// BookingConfig targets accommodation search result pages. Booking scores
// run on a 10-point scale.
func BookingConfig() *ScraperConfig {
	cfg := &ScraperConfig{
		Name:    "booking",
		BaseURL: "https://www.booking.com",
		Selectors: map[string]string{
			SelContainer:     "[data-testid='property-card']",
			SelTitle:         "[data-testid='title']",
			SelDescription:   "[data-testid='property-card-unit-configuration']",
			SelPrice:         "[data-testid='price-and-discounted-price']",
			SelRating:        "[data-testid='review-score'] div:first-child",
			SelReviewCount:   "[data-testid='review-score'] div:last-child",
			SelImage:         "img[data-testid='image']",
			SelLink:          "a[data-testid='title-link']",
			SelStarRating:    "[data-testid='rating-stars']",
			SelAmenities:     "[data-testid='facility-list'] li, .hotel-facilities li",
			SelRoomContainer: "[data-testid='recommended-units'] li, .room-row",
			SelRoomName:      ".room-name, [data-testid='room-name']",
			SelRoomPrice:     ".room-price, [data-testid='room-price']",
			SelRoomCapacity:  ".room-occupancy",
			SelRoomAmenities: ".room-facilities li",
			SelPolicies:      ".policies dt, .policies dd",
			SelAddress:       "[data-testid='address']",
			SelNextPage:      "button[aria-label='Next page'], a[rel='next']",
		},
		Throttle:    DefaultThrottle(),
		Browser:     DefaultBrowser(),
		RatingScale: 10,
	}
	cfg.Browser.WaitSelector = "[data-testid='property-card']"
	cfg.Throttle.MaxConcurrent = 1
	return cfg
}

// TripAdvisorConfig targets destination overview pages.
func TripAdvisorConfig() *ScraperConfig {
	cfg := &ScraperConfig{
		Name:    "tripadvisor",
		BaseURL: "https://www.tripadvisor.com",
		Selectors: map[string]string{
			SelContainer:   "[data-automation='destination-card'], .geo-card, article",
			SelTitle:       "h1, [data-automation='destination-title']",
			SelDescription: ".geo-description, [data-automation='description']",
			SelRating:      ".ui_bubble_rating, [data-automation='bubbleRating']",
			SelReviewCount: ".review-count",
			SelImage:       "img",
			SelLink:        "a",
			SelAttractions: "[data-automation='top-attractions'] li, .attraction-name",
			SelOverview:    ".geo-overview, [data-automation='overview']",
			SelBestTime:    ".best-time",
			SelWeather:     ".weather-summary",
			SelNextPage:    "a[aria-label='Next page'], a.next",
		},
		Throttle: DefaultThrottle(),
		Browser:  DefaultBrowser(),
	}
	cfg.Throttle.RequestDelay = 3 * time.Second
	return cfg
}

// GenericConfig is the fallback pairing for hosts without a dedicated
// provider. It carries no per-field selectors; extraction relies on the
// generic heuristics.
func GenericConfig(baseURL string) *ScraperConfig {
	if baseURL == "" {
		baseURL = "https://example.com"
	}
	return &ScraperConfig{
		Name:      "generic",
		BaseURL:   baseURL,
		Selectors: map[string]string{SelNextPage: "a[rel='next']"},
		Throttle:  DefaultThrottle(),
		Browser:   DefaultBrowser(),
	}
}
