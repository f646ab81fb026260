package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

// AccommodationExtractor builds Accommodation records from lodging search
// result pages. Provider rating scales (commonly 10-point) are normalized
// to the canonical 5-point scale.
type AccommodationExtractor struct {
	cfg *config.ScraperConfig
	log zerolog.Logger
}

func NewAccommodationExtractor(cfg *config.ScraperConfig, log zerolog.Logger) *AccommodationExtractor {
	return &AccommodationExtractor{cfg: cfg, log: log}
}

func (e *AccommodationExtractor) Extract(doc *Document, pageURL string) []models.Record {
	base, _ := url.Parse(pageURL)
	var out []models.Record
	doc.Find(e.cfg.Selectors[config.SelContainer]).Each(func(i int, s *goquery.Selection) {
		rec, err := e.extractOne(s, base, pageURL)
		if err != nil {
			e.log.Warn().Err(err).Str("url", pageURL).Int("index", i).Msg("skipping record")
			return
		}
		if rec != nil {
			out = append(out, rec)
		}
	})
	return out
}

func (e *AccommodationExtractor) extractOne(s *goquery.Selection, base *url.URL, pageURL string) (rec *models.Accommodation, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &models.ExtractionError{Step: "accommodation record", Err: fmt.Errorf("%v", r)}
		}
	}()

	sel := e.cfg.Selectors
	title := childText(s, sel[config.SelTitle])
	if title == "" {
		return nil, nil
	}

	rec = &models.Accommodation{
		ExtractedContent: newBase(title, itemLink(s, e.cfg, base), pageURL),
	}
	selectorFields(&rec.ExtractedContent, s, e.cfg, base)

	if text := childText(s, sel[config.SelStarRating]); text != "" {
		if stars, _, ok := ParseRating(text); ok && stars <= 5 {
			rec.StarRating = stars
		}
	}
	rec.Amenities = childTexts(s, sel[config.SelAmenities])
	rec.Address = childText(s, sel[config.SelAddress])
	rec.Policies = parsePolicies(childTexts(s, sel[config.SelPolicies]))
	rec.RoomTypes = e.extractRooms(s, base)

	rec.Category = "accommodation"
	rec.Tags = AmenityTags(rec.Amenities)
	rec.Metadata = map[string]string{"source": e.cfg.Name}
	return rec, nil
}

func (e *AccommodationExtractor) extractRooms(s *goquery.Selection, base *url.URL) []models.RoomType {
	sel := e.cfg.Selectors
	roomSel := sel[config.SelRoomContainer]
	if roomSel == "" {
		return nil
	}
	var rooms []models.RoomType
	s.Find(roomSel).Each(func(i int, room *goquery.Selection) {
		name := childText(room, sel[config.SelRoomName])
		if name == "" {
			return
		}
		rt := models.RoomType{Name: name}
		if text := childText(room, sel[config.SelRoomPrice]); text != "" {
			if price, currency, ok := ParsePrice(text); ok {
				rt.Price = price
				rt.Currency = currency
			}
		}
		if text := childText(room, sel[config.SelRoomCapacity]); text != "" {
			if n, ok := ParseCount(text); ok {
				rt.Capacity = n
			}
		}
		rt.Amenities = childTexts(room, sel[config.SelRoomAmenities])
		rooms = append(rooms, rt)
	})
	return rooms
}

// parsePolicies turns a flat list of policy texts into a map. "Check-in:
// 15:00" style entries split on the first colon; anything else is numbered.
func parsePolicies(texts []string) map[string]string {
	if len(texts) == 0 {
		return nil
	}
	policies := make(map[string]string, len(texts))
	for i, text := range texts {
		if key, value, found := strings.Cut(text, ":"); found && strings.TrimSpace(key) != "" {
			policies[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		policies[fmt.Sprintf("policy_%d", i+1)] = text
	}
	return policies
}
