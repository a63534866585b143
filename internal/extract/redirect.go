package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fbstory/internal/httputil"
	"fbstory/internal/media"
)

// redirectPath is the mobile site's outbound video link, which carries the media URL in src.
const redirectPath = "/video_redirect/?"

// FromRedirectHref returns the src parameter of the first video redirect link on a mobile page.
// Relative links resolve against the mobile host.
func FromRedirectHref(p *Page) (media.Candidate, bool) {
	var found media.Candidate
	var ok bool

	p.DOM().Find("[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(strings.ToLower(href), redirectPath) {
			return true
		}
		found, ok = redirectSource(href)
		return !ok
	})
	return found, ok
}

func redirectSource(href string) (media.Candidate, bool) {
	link := httputil.Normalize(href)
	if strings.HasPrefix(link, "/") {
		link = "https://" + httputil.MobileHost + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return media.Candidate{}, false
	}
	src := u.Query().Get("src")
	if !strings.HasPrefix(src, "http") {
		return media.Candidate{}, false
	}
	src = httputil.Normalize(src)
	if !httputil.IsHTTPURL(src) {
		return media.Candidate{}, false
	}
	return media.Candidate{URL: src, Source: media.RedirectSrc}, true
}
