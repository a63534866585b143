package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fbstory/internal/httputil"
	"fbstory/internal/media"
)

// MetaCanonicalURL returns the page's og:url, falling back to link rel=canonical.
func MetaCanonicalURL(p *Page) (string, bool) {
	if u := strings.TrimSpace(p.openGraph().URL); u != "" {
		return httputil.Normalize(u), true
	}
	if u, ok := metaContent(p, "og:url"); ok {
		return u, true
	}

	var found string
	p.DOM().Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !hasToken(rel, "canonical") {
			return true
		}
		href, _ := s.Attr("href")
		found = strings.TrimSpace(href)
		return found == ""
	})
	if found == "" {
		return "", false
	}
	return httputil.Normalize(found), true
}

// FromMetaVideo returns og:video, falling back to og:video:secure_url.
func FromMetaVideo(p *Page) (media.Candidate, bool) {
	og := p.openGraph()
	for _, v := range og.Videos {
		if c, ok := metaCandidate(v.URL); ok {
			return c, true
		}
	}
	for _, v := range og.Videos {
		if c, ok := metaCandidate(v.SecureURL); ok {
			return c, true
		}
	}

	// Tags outside the document head are not seen by the Open Graph parser.
	for _, prop := range []string{"og:video", "og:video:url", "og:video:secure_url"} {
		if u, ok := metaContent(p, prop); ok {
			if c, ok := metaCandidate(u); ok {
				return c, true
			}
		}
	}
	return media.Candidate{}, false
}

func metaCandidate(raw string) (media.Candidate, bool) {
	u := httputil.Normalize(strings.TrimSpace(raw))
	if !httputil.IsHTTPURL(u) {
		return media.Candidate{}, false
	}
	return media.Candidate{URL: u, Source: media.MetaOG}, true
}

// metaContent returns the content of the first meta tag whose property or name is prop.
func metaContent(p *Page, prop string) (string, bool) {
	var found string
	p.DOM().Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key, ok := s.Attr("property")
		if !ok {
			key, _ = s.Attr("name")
		}
		if !strings.EqualFold(strings.TrimSpace(key), prop) {
			return true
		}
		content, _ := s.Attr("content")
		found = strings.TrimSpace(content)
		return found == ""
	})
	if found == "" {
		return "", false
	}
	return httputil.Normalize(found), true
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}
