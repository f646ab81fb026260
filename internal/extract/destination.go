package extract

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

// DestinationExtractor builds Destination records from place overview pages.
type DestinationExtractor struct {
	cfg *config.ScraperConfig
	log zerolog.Logger
}

func NewDestinationExtractor(cfg *config.ScraperConfig, log zerolog.Logger) *DestinationExtractor {
	return &DestinationExtractor{cfg: cfg, log: log}
}

func (e *DestinationExtractor) Extract(doc *Document, pageURL string) []models.Record {
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

func (e *DestinationExtractor) extractOne(s *goquery.Selection, base *url.URL, pageURL string) (rec *models.Destination, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &models.ExtractionError{Step: "destination record", Err: fmt.Errorf("%v", r)}
		}
	}()

	sel := e.cfg.Selectors
	title := childText(s, sel[config.SelTitle])
	if title == "" {
		return nil, nil
	}

	rec = &models.Destination{
		ExtractedContent: newBase(title, itemLink(s, e.cfg, base), pageURL),
	}
	selectorFields(&rec.ExtractedContent, s, e.cfg, base)

	rec.Attractions = childTexts(s, sel[config.SelAttractions])
	rec.Overview = childText(s, sel[config.SelOverview])
	rec.BestTimeToVisit = childText(s, sel[config.SelBestTime])
	rec.Weather = childText(s, sel[config.SelWeather])
	if rec.Description == "" {
		rec.Description = rec.Overview
	}

	rec.Category = "destination"
	rec.Metadata = map[string]string{"source": e.cfg.Name}
	return rec, nil
}
