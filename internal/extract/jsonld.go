package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDEntities decodes every application/ld+json script in the document
// into flat entity maps, unwrapping top-level arrays and @graph containers.
// Broken blocks are skipped.
func jsonLDEntities(doc *Document) []map[string]any {
	var entities []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		var decoded any
		if err := json.Unmarshal([]byte(s.Text()), &decoded); err != nil {
			return
		}
		entities = append(entities, flattenLD(decoded)...)
	})
	return entities
}

func flattenLD(decoded any) []map[string]any {
	switch v := decoded.(type) {
	case []any:
		var out []map[string]any
		for _, item := range v {
			out = append(out, flattenLD(item)...)
		}
		return out
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			var out []map[string]any
			for _, item := range graph {
				out = append(out, flattenLD(item)...)
			}
			return out
		}
		return []map[string]any{v}
	default:
		return nil
	}
}

// ldType returns the entity's @type, taking the first entry of a type list.
func ldType(entity map[string]any) string {
	switch t := entity["@type"].(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func ldString(entity map[string]any, key string) string {
	if s, ok := entity[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func ldFloat(entity map[string]any, key string) float64 {
	switch v := entity[key].(type) {
	case float64:
		return v
	case string:
		if f, _, ok := ParseRating(v); ok {
			return f
		}
	}
	return 0
}

func ldNested(entity map[string]any, key string) map[string]any {
	switch v := entity[key].(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

// ldImages collects image URLs from the common shapes: a string, a list of
// strings, or ImageObject maps.
func ldImages(entity map[string]any) []string {
	var out []string
	appendImage := func(v any) {
		switch img := v.(type) {
		case string:
			if s := strings.TrimSpace(img); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if u := ldString(img, "url"); u != "" {
				out = append(out, u)
			}
		}
	}
	switch v := entity["image"].(type) {
	case []any:
		for _, item := range v {
			appendImage(item)
		}
	default:
		appendImage(v)
	}
	return out
}
