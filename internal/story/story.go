// Package story locates story identifiers in URLs, page text and JSON payloads.
package story

import (
	"net/url"
	"regexp"

	"github.com/tidwall/gjson"

	"fbstory/internal/media"
)

// idKeys name the object fields that carry a story id.
var idKeys = []string{"story_fbid", "story_id", "storyId", "story_legacy_id"}

// textPatterns are tried in order; the first match wins.
// A pattern with two groups captures the owner id as well.
var textPatterns = []*regexp.Regexp{
	regexp.MustCompile(`story_fbid=(\d+)&id=(\d+)`),
	regexp.MustCompile(`"story_fbid"\s*:\s*"(\d+)"`),
	regexp.MustCompile(`story_fbid%3D(\d+)%26id%3D(\d+)`),
	regexp.MustCompile(`story_fbid=(\d+)`),
}

// FromURL reads the story_fbid and id query parameters of raw.
func FromURL(raw string) (media.StoryID, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return media.StoryID{}, false
	}
	q := u.Query()
	fbid := q.Get("story_fbid")
	if fbid == "" {
		return media.StoryID{}, false
	}
	return media.StoryID{FBID: fbid, UserID: q.Get("id")}, true
}

// FromText scans page text for a story id.
func FromText(body string) (media.StoryID, bool) {
	if body == "" {
		return media.StoryID{}, false
	}
	for _, re := range textPatterns {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		id := media.StoryID{FBID: m[1]}
		if len(m) > 2 {
			id.UserID = m[2]
		}
		return id, true
	}
	return media.StoryID{}, false
}

// BuildURL returns the canonical story.php address for id.
func BuildURL(id media.StoryID) string {
	if id.FBID == "" {
		return ""
	}
	q := "story_fbid=" + url.QueryEscape(id.FBID)
	if id.UserID != "" {
		q += "&id=" + url.QueryEscape(id.UserID)
	}
	return "https://www.facebook.com/story.php?" + q
}

// FindMatching walks tree depth-first in document order and returns every object
// whose story id field equals fbid. Matched objects are still descended into,
// so nested matches follow their parent.
func FindMatching(tree gjson.Result, fbid string) []gjson.Result {
	if fbid == "" {
		return nil
	}
	var out []gjson.Result
	Walk(tree, func(obj gjson.Result) {
		if matches(obj, fbid) {
			out = append(out, obj)
		}
	})
	return out
}

func matches(obj gjson.Result, fbid string) bool {
	for _, key := range idKeys {
		v := obj.Get(key)
		switch v.Type {
		case gjson.String:
			if v.Str == fbid {
				return true
			}
		case gjson.Number:
			// Compare the literal digits so ids beyond float precision still match.
			if v.Raw == fbid {
				return true
			}
		}
	}
	return false
}

// Walk calls visit for every object in tree, parents before children.
func Walk(tree gjson.Result, visit func(obj gjson.Result)) {
	switch {
	case tree.IsObject():
		visit(tree)
		tree.ForEach(func(_, value gjson.Result) bool {
			Walk(value, visit)
			return true
		})
	case tree.IsArray():
		tree.ForEach(func(_, value gjson.Result) bool {
			Walk(value, visit)
			return true
		})
	}
}
