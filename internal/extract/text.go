package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

var (
	priceRe    = regexp.MustCompile(`([$€£])\s?([\d,]+(?:\.\d{1,2})?)|(USD|EUR|GBP)\s?([\d,]+(?:\.\d{1,2})?)`)
	ratingRe   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)(?:\s*/\s*(\d+))?`)
	countRe    = regexp.MustCompile(`([\d,]+)`)
	hoursRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h\b)`)
	daysRe     = regexp.MustCompile(`(?i)(\d+)\s*days?`)
	rangeRe    = regexp.MustCompile(`(\d+)\s*(?:-|–|to)\s*(\d+)`)
	upToRe     = regexp.MustCompile(`(?i)up to\s+(\d+)`)
	minimumRe  = regexp.MustCompile(`(?i)min(?:imum)?\.?\s+(?:of\s+)?(\d+)`)
)

var currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP"}

// Sanitize strips any markup from extracted text and collapses whitespace.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return CleanWhitespace(sanitizer.Sanitize(text))
}

// CleanWhitespace removes excessive whitespace from text content.
func CleanWhitespace(text string) string {
	if text == "" {
		return ""
	}
	cleaned := strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(cleaned)
}

// ParsePrice pulls the first price-looking amount out of free-form text,
// returning the amount, its ISO currency and whether anything matched.
func ParsePrice(text string) (float64, string, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	symbol, amount := m[1], m[2]
	if symbol == "" {
		symbol, amount = m[3], m[4]
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
	if err != nil {
		return 0, "", false
	}
	currency := symbol
	if iso, ok := currencySymbols[symbol]; ok {
		currency = iso
	}
	return value, currency, true
}

// ParseRating pulls a numeric rating out of text such as "4.5" or "8.7/10".
// The returned scale is the explicit denominator, zero when absent.
func ParseRating(text string) (value, scale float64, ok bool) {
	m := ratingRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, 0, false
	}
	if m[2] != "" {
		scale, _ = strconv.ParseFloat(m[2], 64)
	}
	return value, scale, true
}

// ParseCount pulls the first integer out of text such as "1,234 reviews".
func ParseCount(text string) (int, bool) {
	m := countRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeRating converts a raw rating to the canonical 5-point scale.
// declaredScale comes from the provider configuration or from an explicit
// denominator in the source text; when zero, the raw value decides: values
// above 5 are treated as 10-point scores.
func NormalizeRating(raw, declaredScale float64) float64 {
	if raw <= 0 {
		return 0
	}
	scale := declaredScale
	if scale == 0 {
		if raw > 5 {
			scale = 10
		} else {
			scale = 5
		}
	}
	normalized := raw * 5 / scale
	if normalized > 5 {
		normalized = 5
	}
	return math.Round(normalized*10) / 10
}

// DurationTag buckets free-form duration text into half-day, full-day or
// multi-day. Empty when the text carries no recognizable duration.
func DurationTag(text string) string {
	if m := daysRe.FindStringSubmatch(text); m != nil {
		if days, _ := strconv.Atoi(m[1]); days > 1 {
			return "multi-day"
		}
		return "full-day"
	}
	if m := hoursRe.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		if hours >= 24 {
			return "multi-day"
		}
		if hours < 5 {
			return "half-day"
		}
		return "full-day"
	}
	return ""
}

// amenityBuckets maps amenity keywords to canonical tags.
var amenityBuckets = []struct {
	tag      string
	keywords []string
}{
	{"wifi", []string{"wifi", "wi-fi", "wireless internet"}},
	{"pool", []string{"pool", "swimming"}},
	{"parking", []string{"parking", "garage"}},
	{"spa", []string{"spa", "sauna", "wellness"}},
	{"gym", []string{"gym", "fitness"}},
	{"breakfast", []string{"breakfast"}},
	{"pet-friendly", []string{"pet", "dog"}},
	{"air-conditioning", []string{"air condition", "a/c", "aircon"}},
}

// AmenityTags derives canonical tags from amenity text. The result is a
// presentation convenience, not a correctness-critical path.
func AmenityTags(amenities []string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, amenity := range amenities {
		lower := strings.ToLower(amenity)
		for _, bucket := range amenityBuckets {
			if seen[bucket.tag] {
				continue
			}
			for _, kw := range bucket.keywords {
				if strings.Contains(lower, kw) {
					tags = append(tags, bucket.tag)
					seen[bucket.tag] = true
					break
				}
			}
		}
	}
	return tags
}

// ParseGroupSize extracts minimum and maximum group size from text such as
// "2-15 people", "up to 20" or "minimum 4".
func ParseGroupSize(text string) (min, max int) {
	if m := rangeRe.FindStringSubmatch(text); m != nil {
		min, _ = strconv.Atoi(m[1])
		max, _ = strconv.Atoi(m[2])
		return min, max
	}
	if m := upToRe.FindStringSubmatch(text); m != nil {
		max, _ = strconv.Atoi(m[1])
		return 0, max
	}
	if m := minimumRe.FindStringSubmatch(text); m != nil {
		min, _ = strconv.Atoi(m[1])
		return min, 0
	}
	return 0, 0
}

// NormalizeTitle produces the dedup key for candidate records: lowercase,
// punctuation stripped, whitespace collapsed.
func NormalizeTitle(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsAny reports whether s contains any of the substrings,
// case-insensitively.
func containsAny(s string, substrings []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
