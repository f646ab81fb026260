package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

// Strategy order for unknown sites. Each returns candidate records; the
// first strategy that produces any wins.
var (
	// GenericContainerPatterns are the class-based selectors tried against
	// unknown listing markup, in order.
	GenericContainerPatterns = []string{
		"[class*='card']",
		"[class*='item']",
		"[class*='result']",
		"[class*='listing']",
		"article",
	}

	// GenericLinkHints are URL path fragments that mark an anchor as a
	// travel item link.
	GenericLinkHints = []string{"activity", "tour", "hotel", "attraction", "experience"}

	// genericLDTypes are the schema.org types the JSON-LD strategy accepts.
	genericLDTypes = map[string]string{
		"TouristAttraction": "attraction",
		"TouristTrip":       "activity",
		"Event":             "activity",
		"Product":           "activity",
		"Hotel":             "accommodation",
		"LodgingBusiness":   "accommodation",
		"Place":             "destination",
		"City":              "destination",
	}
)

// GenericExtractor handles sites with no dedicated configuration. It tries
// structured data first, then progressively looser markup heuristics, and
// finally a readability pass that yields a single page-level record.
type GenericExtractor struct {
	cfg *config.ScraperConfig
	log zerolog.Logger
}

func NewGenericExtractor(cfg *config.ScraperConfig, log zerolog.Logger) *GenericExtractor {
	return &GenericExtractor{cfg: cfg, log: log}
}

func (e *GenericExtractor) Extract(doc *Document, pageURL string) []models.Record {
	base, _ := url.Parse(pageURL)

	strategies := []struct {
		name string
		run  func() []models.Record
	}{
		{"jsonld", func() []models.Record { return e.fromJSONLD(doc, pageURL) }},
		{"containers", func() []models.Record { return e.fromContainers(doc, base, pageURL) }},
		{"anchors", func() []models.Record { return e.fromAnchors(doc, base, pageURL) }},
		{"grid", func() []models.Record { return e.fromGrids(doc, base, pageURL) }},
		{"readability", func() []models.Record { return e.fromReadability(doc, base, pageURL) }},
	}
	for _, strategy := range strategies {
		records := e.tryStrategy(strategy.name, strategy.run)
		if len(records) > 0 {
			e.log.Debug().Str("strategy", strategy.name).Int("count", len(records)).
				Str("url", pageURL).Msg("generic extraction")
			return dedupeByTitle(records)
		}
	}
	return nil
}

// tryStrategy runs one strategy with a panic boundary so a bad heuristic
// falls through to the next instead of killing the scrape.
func (e *GenericExtractor) tryStrategy(name string, run func() []models.Record) (records []models.Record) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err := &models.ExtractionError{Step: name, Err: fmt.Errorf("%v", r)}
			e.log.Warn().Err(err).Msg("strategy failed")
		}
	}()
	return run()
}

func (e *GenericExtractor) fromJSONLD(doc *Document, pageURL string) []models.Record {
	var out []models.Record
	for _, entity := range jsonLDEntities(doc) {
		category, ok := genericLDTypes[ldType(entity)]
		if !ok {
			continue
		}
		name := ldString(entity, "name")
		if name == "" {
			continue
		}
		rec := newBase(name, ldString(entity, "url"), pageURL)
		rec.Description = ldString(entity, "description")
		rec.Category = category
		rec.Images = ldImages(entity)
		if len(rec.Images) > maxImagesPerRecord {
			rec.Images = rec.Images[:maxImagesPerRecord]
		}
		if offers := ldNested(entity, "offers"); offers != nil {
			rec.Price = ldFloat(offers, "price")
			rec.Currency = ldString(offers, "priceCurrency")
			if rec.Price == 0 {
				rec.Price = ldFloat(offers, "lowPrice")
			}
		}
		if agg := ldNested(entity, "aggregateRating"); agg != nil {
			best := ldFloat(agg, "bestRating")
			rec.Rating = NormalizeRating(ldFloat(agg, "ratingValue"), best)
			rec.ReviewCount = int(ldFloat(agg, "reviewCount"))
		}
		if geo := ldNested(entity, "geo"); geo != nil {
			rec.Location = &models.GeoPoint{
				Lat: ldFloat(geo, "latitude"),
				Lng: ldFloat(geo, "longitude"),
			}
		}
		rec.Metadata = map[string]string{"source": e.cfg.Name, "strategy": "jsonld"}
		out = append(out, &rec)
	}
	return out
}

func (e *GenericExtractor) fromContainers(doc *Document, base *url.URL, pageURL string) []models.Record {
	for _, pattern := range GenericContainerPatterns {
		matches := doc.Find(pattern)
		if matches.Length() < 2 {
			continue
		}
		records := e.candidatesFrom(matches, base, pageURL, "containers")
		if len(records) >= 2 {
			return records
		}
	}
	return nil
}

// fromAnchors treats anchors whose path mentions a travel keyword and whose
// surrounding card carries price or duration text as item candidates.
func (e *GenericExtractor) fromAnchors(doc *Document, base *url.URL, pageURL string) []models.Record {
	var out []models.Record
	doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !containsAny(href, GenericLinkHints) {
			return
		}
		card := a.Closest("li, article, div")
		if card.Length() == 0 {
			return
		}
		cardText := card.Text()
		_, _, hasPrice := ParsePrice(cardText)
		if !hasPrice && DurationTag(cardText) == "" {
			return
		}
		title := Sanitize(a.Text())
		if title == "" {
			title = Sanitize(card.Find("h1, h2, h3, h4").First().Text())
		}
		if title == "" || len(title) < 4 {
			return
		}
		rec := e.candidate(card, title, resolveURL(base, href), pageURL, "anchors")
		out = append(out, rec)
	})
	return out
}

// fromGrids scans repeated direct children of list and grid containers.
func (e *GenericExtractor) fromGrids(doc *Document, base *url.URL, pageURL string) []models.Record {
	var out []models.Record
	doc.Find("ul, ol, [class*='grid'], [class*='list']").EachWithBreak(func(i int, container *goquery.Selection) bool {
		children := container.Children()
		if children.Length() < 3 {
			return true
		}
		records := e.candidatesFrom(children, base, pageURL, "grid")
		if len(records) >= 3 {
			out = records
			return false
		}
		return true
	})
	return out
}

// fromReadability produces one record describing the page itself. Last
// resort for article-like pages with no recognizable listing structure.
func (e *GenericExtractor) fromReadability(doc *Document, base *url.URL, pageURL string) []models.Record {
	if base == nil {
		return nil
	}
	article, err := readability.FromReader(strings.NewReader(doc.Raw()), base)
	if err != nil {
		return nil
	}
	title := Sanitize(article.Title)
	if title == "" {
		title = doc.PageTitle()
	}
	if title == "" || CleanWhitespace(article.TextContent) == "" {
		return nil
	}
	rec := newBase(title, pageURL, pageURL)
	rec.Description = Sanitize(article.Excerpt)
	if rec.Description == "" {
		rec.Description = doc.PageDescription()
	}
	rec.Category = "destination"
	if img := ogImage(doc); img != "" {
		rec.Images = []string{img}
	}
	rec.Metadata = map[string]string{"source": e.cfg.Name, "strategy": "readability"}
	return []models.Record{&rec}
}

// candidatesFrom builds a candidate record for every container in a
// selection that carries a plausible title.
func (e *GenericExtractor) candidatesFrom(matches *goquery.Selection, base *url.URL, pageURL, strategy string) []models.Record {
	var out []models.Record
	matches.Each(func(i int, s *goquery.Selection) {
		title := Sanitize(s.Find("h1, h2, h3, h4, [class*='title'], [class*='name']").First().Text())
		if title == "" || len(title) < 4 {
			return
		}
		link := childAttr(s, "a[href]", "href")
		out = append(out, e.candidate(s, title, resolveURL(base, link), pageURL, strategy))
	})
	return out
}

func (e *GenericExtractor) candidate(s *goquery.Selection, title, link, pageURL, strategy string) models.Record {
	rec := newBase(title, link, pageURL)
	text := s.Text()
	if price, currency, ok := ParsePrice(text); ok {
		rec.Price = price
		rec.Currency = currency
	}
	if tag := DurationTag(text); tag != "" {
		rec.Tags = append(rec.Tags, tag)
		rec.Category = "activity"
	}
	rec.Images = collectImages(s, "", nil)
	rec.Metadata = map[string]string{"source": e.cfg.Name, "strategy": strategy}
	return &rec
}

// dedupeByTitle collapses candidates sharing a normalized title, keeping
// the one that carries a price when the duplicates disagree.
func dedupeByTitle(records []models.Record) []models.Record {
	index := make(map[string]int)
	var out []models.Record
	for _, rec := range records {
		key := NormalizeTitle(rec.Base().Title)
		if key == "" {
			out = append(out, rec)
			continue
		}
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, rec)
			continue
		}
		if out[at].Base().Price == 0 && rec.Base().Price > 0 {
			out[at] = rec
		}
	}
	return out
}
