// Package models defines the structured records produced by the scraping
// engine and the result envelope returned to callers.
package models

import "time"

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ExtractedContent is the base record shared by every content variant.
// Title and URL are always populated; every other field is best-effort and
// may be absent depending on what the source page exposes.
type ExtractedContent struct {
	ID          string            `json:"id"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Price       float64           `json:"price,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	Rating      float64           `json:"rating,omitempty"`
	ReviewCount int               `json:"reviewCount,omitempty"`
	Images      []string          `json:"images,omitempty"`
	Location    *GeoPoint         `json:"location,omitempty"`
	Category    string            `json:"category,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ExtractedAt time.Time         `json:"extractedAt"`
}

// Base returns the embedded base record, satisfying Record.
func (c *ExtractedContent) Base() *ExtractedContent { return c }

// Record is implemented by every content variant via the embedded
// ExtractedContent.
type Record interface {
	Base() *ExtractedContent
}

// Activity is a bookable tour or experience.
type Activity struct {
	ExtractedContent
	Duration           string   `json:"duration,omitempty"`
	Highlights         []string `json:"highlights,omitempty"`
	Includes           []string `json:"includes,omitempty"`
	Excludes           []string `json:"excludes,omitempty"`
	MeetingPoint       string   `json:"meetingPoint,omitempty"`
	CancellationPolicy string   `json:"cancellationPolicy,omitempty"`
	MinGroupSize       int      `json:"minGroupSize,omitempty"`
	MaxGroupSize       int      `json:"maxGroupSize,omitempty"`
	Availability       string   `json:"availability,omitempty"`
}

// RoomType describes one bookable room within an accommodation.
type RoomType struct {
	Name      string   `json:"name"`
	Price     float64  `json:"price,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Capacity  int      `json:"capacity,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

// Accommodation is a lodging listing. StarRating is normalized to a 5-point
// scale regardless of the provider's own scale.
type Accommodation struct {
	ExtractedContent
	StarRating float64           `json:"starRating,omitempty"`
	Amenities  []string          `json:"amenities,omitempty"`
	RoomTypes  []RoomType        `json:"roomTypes,omitempty"`
	Policies   map[string]string `json:"policies,omitempty"`
	Address    string            `json:"address,omitempty"`
}

// Destination is a place overview page.
type Destination struct {
	ExtractedContent
	Attractions     []string `json:"attractions,omitempty"`
	Overview        string   `json:"overview,omitempty"`
	BestTimeToVisit string   `json:"bestTimeToVisit,omitempty"`
	Weather         string   `json:"weather,omitempty"`
}

// ResultMeta describes one scrape call.
type ResultMeta struct {
	URL            string        `json:"url"`
	ScrapedAt      time.Time     `json:"scrapedAt"`
	ItemsFound     int           `json:"itemsFound"`
	ProcessingTime time.Duration `json:"processingTime"`
	PagesCrawled   int           `json:"pagesCrawled"`
}

// ScrapeResult is the per-URL outcome handed back to callers. When Success
// is true, Meta.ItemsFound equals len(Data).
type ScrapeResult struct {
	Success bool       `json:"success"`
	Data    []Record   `json:"data"`
	Errors  []string   `json:"errors,omitempty"`
	Meta    ResultMeta `json:"metadata"`
}
