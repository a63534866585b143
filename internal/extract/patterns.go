package extract

import (
	"regexp"
	"sync"

	"fbstory/internal/httputil"
	"fbstory/internal/media"
)

// mp4Patterns match plain and JSON-escaped .mp4 links, in that order.
// Both tolerate an escaped ampersand inside the query.
var mp4Patterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://(?:[^\s"'\\]|\\u0026)+?\.mp4(?:[^\s"'\\]|\\u0026)*`),
	regexp.MustCompile(`https?:\\/\\/(?:[^\s"\\]|\\/|\\u0026)+?\.mp4(?:[^\s"\\]|\\/|\\u0026)*`),
}

var (
	keyPatternsMu sync.Mutex
	keyPatterns   = make(map[string]*regexp.Regexp)
)

// keyPattern returns the compiled `"<key>": "<value>"` matcher for key.
func keyPattern(key string) *regexp.Regexp {
	keyPatternsMu.Lock()
	defer keyPatternsMu.Unlock()
	re, ok := keyPatterns[key]
	if !ok {
		re = regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"([^"]+)"`)
		keyPatterns[key] = re
	}
	return re
}

// FromKeyPattern returns the value of the first key, in key order, that appears
// as a string literal in text and holds an absolute http(s) URL.
func FromKeyPattern(text string, keys []string) (media.Candidate, bool) {
	for _, key := range keys {
		m := keyPattern(key).FindStringSubmatch(text)
		if m == nil {
			continue
		}
		u := httputil.Normalize(m[1])
		if !httputil.IsHTTPURL(u) {
			continue
		}
		return media.Candidate{URL: u, Source: media.JSONField}, true
	}
	return media.Candidate{}, false
}

// FromMP4Pattern returns every .mp4 link in text, plain ones first, normalized.
func FromMP4Pattern(text string) []media.Candidate {
	var out []media.Candidate
	for _, re := range mp4Patterns {
		for _, m := range re.FindAllString(text, -1) {
			u := httputil.Normalize(m)
			if !httputil.IsHTTPURL(u) {
				continue
			}
			out = append(out, media.Candidate{URL: u, Source: media.MP4Pattern})
		}
	}
	return out
}

// OnCDN keeps the candidates hosted on the media CDN.
func OnCDN(cands []media.Candidate) []media.Candidate {
	var out []media.Candidate
	for _, c := range cands {
		if httputil.IsCDNURL(c.URL) {
			out = append(out, c)
		}
	}
	return out
}
