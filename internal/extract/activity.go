package extract

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

// ActivityExtractor builds Activity records from tour and experience
// listing pages using the configured selector map.
type ActivityExtractor struct {
	cfg *config.ScraperConfig
	log zerolog.Logger
}

func NewActivityExtractor(cfg *config.ScraperConfig, log zerolog.Logger) *ActivityExtractor {
	return &ActivityExtractor{cfg: cfg, log: log}
}

func (e *ActivityExtractor) Extract(doc *Document, pageURL string) []models.Record {
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

// extractOne builds a single Activity. A panic while reading one container
// is converted to an ExtractionError so the remaining containers still
// extract.
func (e *ActivityExtractor) extractOne(s *goquery.Selection, base *url.URL, pageURL string) (rec *models.Activity, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &models.ExtractionError{Step: "activity record", Err: fmt.Errorf("%v", r)}
		}
	}()

	sel := e.cfg.Selectors
	title := childText(s, sel[config.SelTitle])
	if title == "" {
		return nil, nil
	}

	rec = &models.Activity{
		ExtractedContent: newBase(title, itemLink(s, e.cfg, base), pageURL),
	}
	selectorFields(&rec.ExtractedContent, s, e.cfg, base)

	rec.Duration = childText(s, sel[config.SelDuration])
	rec.Highlights = childTexts(s, sel[config.SelHighlights])
	rec.Includes = childTexts(s, sel[config.SelIncludes])
	rec.Excludes = childTexts(s, sel[config.SelExcludes])
	rec.MeetingPoint = childText(s, sel[config.SelMeetingPoint])
	rec.CancellationPolicy = childText(s, sel[config.SelCancellation])
	rec.Availability = childText(s, sel[config.SelAvailability])
	if text := childText(s, sel[config.SelGroupSize]); text != "" {
		rec.MinGroupSize, rec.MaxGroupSize = ParseGroupSize(text)
	}

	rec.Category = "activity"
	if tag := DurationTag(rec.Duration); tag != "" {
		rec.Tags = append(rec.Tags, tag)
	}
	if rec.CancellationPolicy != "" && containsAny(rec.CancellationPolicy, []string{"free cancel"}) {
		rec.Tags = append(rec.Tags, "free-cancellation")
	}
	rec.Metadata = map[string]string{"source": e.cfg.Name}
	return rec, nil
}
