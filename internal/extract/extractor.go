package extract

import (
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

// Extractor is the pluggable content extraction contract. Implementations
// are side-effect free: an empty or malformed document yields an empty
// slice, never an error, and a failure while building one record skips that
// record only.
type Extractor interface {
	Extract(doc *Document, pageURL string) []models.Record
}

// newBase builds the common part of every record. Title is the caller's
// responsibility; records without one are never emitted. The record URL is
// the item link when present, otherwise the page it came from.
func newBase(title, link, pageURL string) models.ExtractedContent {
	recordURL := link
	if recordURL == "" {
		recordURL = pageURL
	}
	return models.ExtractedContent{
		ID:          uuid.New().String(),
		URL:         recordURL,
		Title:       title,
		ExtractedAt: time.Now(),
	}
}

// selectorFields reads the base-record fields every variant shares from a
// container selection, driven by the configured selector map.
func selectorFields(rec *models.ExtractedContent, s *goquery.Selection, cfg *config.ScraperConfig, base *url.URL) {
	sel := cfg.Selectors

	rec.Description = childText(s, sel[config.SelDescription])
	if text := childText(s, sel[config.SelPrice]); text != "" {
		if price, currency, ok := ParsePrice(text); ok {
			rec.Price = price
			rec.Currency = currency
		}
	}
	if text := childText(s, sel[config.SelRating]); text != "" {
		if value, scale, ok := ParseRating(text); ok {
			if scale == 0 {
				scale = cfg.RatingScale
			}
			rec.Rating = NormalizeRating(value, scale)
		}
	}
	if text := childText(s, sel[config.SelReviewCount]); text != "" {
		if n, ok := ParseCount(text); ok {
			rec.ReviewCount = n
		}
	}
	if imgSel := sel[config.SelImage]; imgSel != "" {
		rec.Images = collectImages(s, imgSel, base)
	}
}

// itemLink resolves the container's link selector to an absolute URL.
func itemLink(s *goquery.Selection, cfg *config.ScraperConfig, base *url.URL) string {
	href := childAttr(s, cfg.Selectors[config.SelLink], "href")
	if href == "" {
		return ""
	}
	return resolveURL(base, href)
}
