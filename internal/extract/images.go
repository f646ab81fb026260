package extract

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Image src attributes in the order lazy-loading sites use them.
var imageSrcAttrs = []string{"src", "data-src", "data-original", "data-lazy-src"}

// badImageHint filters sprites, icons and tracking pixels out of the
// collected images.
var badImageHint = regexp.MustCompile(`(?i)(sprite|icon|favicon|logo|avatar|emoji|placeholder|pixel|tracker|ads?|beacon)`)

const maxImagesPerRecord = 5

// collectImages gathers usable image URLs from the elements matching
// selector inside a selection, absolutized against base, deduplicated and
// capped.
func collectImages(s *goquery.Selection, selector string, base *url.URL) []string {
	if selector == "" {
		selector = "img"
	}
	var out []string
	seen := make(map[string]bool)
	s.Find(selector).Each(func(i int, img *goquery.Selection) {
		if len(out) >= maxImagesPerRecord {
			return
		}
		for _, attr := range imageSrcAttrs {
			src, ok := img.Attr(attr)
			if !ok || src == "" {
				continue
			}
			if badImageHint.MatchString(src) {
				break
			}
			abs := resolveURL(base, src)
			if abs == "" || seen[abs] {
				break
			}
			seen[abs] = true
			out = append(out, abs)
			break
		}
	})
	return out
}

// ogImage returns the page-level Open Graph image, if any.
func ogImage(doc *Document) string {
	if img := doc.MetaContent("og:image", ""); img != "" {
		return img
	}
	return doc.MetaContent("og:image:secure_url", "")
}
