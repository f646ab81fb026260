// Package extract turns parsed documents into structured travel records.
// Extractors are side-effect-free values: given a document, they return zero
// or more records and never fail on empty or malformed markup. Behavior is
// identical whether the document came from a browser snapshot or a raw fetch.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed page. The zero-value-ish document produced from
// broken input behaves like an empty page; selections on it match nothing.
type Document struct {
	doc *goquery.Document
	raw string
}

// Parse builds a Document from markup. It never fails: unparseable input
// yields an empty document.
func Parse(html string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return &Document{doc: doc, raw: html}
}

// Find returns the selection matching a CSS selector. An empty or invalid
// selector matches nothing.
func (d *Document) Find(selector string) *goquery.Selection {
	if selector == "" {
		return d.doc.Find("never-matches-anything")
	}
	return d.doc.Find(selector)
}

// Raw returns the original markup the document was parsed from.
func (d *Document) Raw() string { return d.raw }

// MetaContent searches meta tags by property then by name, the usual
// og: → twitter: → plain fallback chain callers compose.
func (d *Document) MetaContent(property, name string) string {
	var value string
	d.doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if property != "" {
			if prop, ok := s.Attr("property"); ok && prop == property {
				if content, ok := s.Attr("content"); ok {
					value = strings.TrimSpace(content)
					return false
				}
			}
		}
		if name != "" {
			if n, ok := s.Attr("name"); ok && n == name {
				if content, ok := s.Attr("content"); ok {
					value = strings.TrimSpace(content)
					return false
				}
			}
		}
		return true
	})
	return value
}

// PageTitle extracts the document title with the standard fallback chain:
// og:title, twitter:title, first h1, then the title tag.
func (d *Document) PageTitle() string {
	if t := d.MetaContent("og:title", ""); t != "" {
		return Sanitize(t)
	}
	if t := d.MetaContent("", "twitter:title"); t != "" {
		return Sanitize(t)
	}
	if t := strings.TrimSpace(d.doc.Find("h1").First().Text()); t != "" {
		return Sanitize(t)
	}
	return Sanitize(strings.TrimSpace(d.doc.Find("title").First().Text()))
}

// PageDescription extracts the page description via meta tags.
func (d *Document) PageDescription() string {
	if t := d.MetaContent("og:description", ""); t != "" {
		return Sanitize(t)
	}
	if t := d.MetaContent("", "twitter:description"); t != "" {
		return Sanitize(t)
	}
	return Sanitize(d.MetaContent("", "description"))
}

// NextPageURL resolves the href of the first element matching the pagination
// selector against the current page URL. Empty when there is no next link.
func (d *Document) NextPageURL(selector, pageURL string) string {
	if selector == "" {
		return ""
	}
	href, ok := d.Find(selector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return resolveURL(base, href)
}

// childText returns the cleaned text of the first match inside a selection.
func childText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return Sanitize(s.Find(selector).First().Text())
}

// childTexts returns the cleaned text of every match inside a selection.
func childTexts(s *goquery.Selection, selector string) []string {
	if selector == "" {
		return nil
	}
	var out []string
	s.Find(selector).Each(func(i int, m *goquery.Selection) {
		if t := Sanitize(m.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// childAttr returns an attribute of the first match inside a selection.
func childAttr(s *goquery.Selection, selector, attr string) string {
	if selector == "" {
		return ""
	}
	v, _ := s.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// resolveURL absolutizes href against base; relative links on a nil base
// stay as they are.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
