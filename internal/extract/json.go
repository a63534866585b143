package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"fbstory/internal/httputil"
	"fbstory/internal/media"
	"fbstory/internal/story"
)

// relayMarker names the payload that carries prefetched story data.
const relayMarker = "RelayPrefetchedStreamCache"

// ScriptPayloads returns the parsed JSON script blocks of the page that mention
// the relay cache or fbid. Blocks that are not valid JSON are skipped.
func ScriptPayloads(p *Page, fbid string) []gjson.Result {
	var out []gjson.Result
	p.DOM().Find(`script[type="application/json"][data-sjs]`).Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, relayMarker) && (fbid == "" || !strings.Contains(text, fbid)) {
			return
		}
		if !gjson.Valid(text) {
			return
		}
		out = append(out, gjson.Parse(text))
	})
	return out
}

// FromJSONTree collects video URLs from every object in tree, in document order.
// Per object the quality fields come first, then the video_versions entries.
func FromJSONTree(tree gjson.Result) []media.Candidate {
	var out []media.Candidate
	story.Walk(tree, func(obj gjson.Result) {
		for _, key := range treeKeys {
			if c, ok := candidateFrom(obj.Get(key), media.JSONField); ok {
				out = append(out, c)
			}
		}

		versions := obj.Get("video_versions")
		if !versions.IsArray() || len(versions.Array()) == 0 {
			versions = obj.Get("video_versions2")
		}
		if !versions.IsArray() {
			return
		}
		versions.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() {
				if c, ok := candidateFrom(item.Get("url"), media.VideoVersions); ok {
					out = append(out, c)
				}
			}
			return true
		})
	})
	return out
}

func candidateFrom(v gjson.Result, source media.SourceKind) (media.Candidate, bool) {
	if v.Type != gjson.String || !strings.HasPrefix(v.Str, "http") {
		return media.Candidate{}, false
	}
	u := httputil.Normalize(v.Str)
	if !httputil.IsHTTPURL(u) {
		return media.Candidate{}, false
	}
	return media.Candidate{URL: u, Source: source}, true
}
