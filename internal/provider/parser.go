package provider

import (
	"strings"
	"unicode/utf8"

	"fbstory/internal/extract"
	"fbstory/internal/media"
	"fbstory/internal/story"
)

// storyWindow bounds the text scanned on each side of a story id, in characters.
const storyWindow = 20000

// parseStoryVideo finds the video belonging to a known story.
// Only data tied to that story is considered: the JSON objects carrying its id,
// then the text surrounding the first mention of the id.
func parseStoryVideo(p *extract.Page, id media.StoryID) (media.Candidate, bool) {
	var cands []media.Candidate
	for _, payload := range extract.ScriptPayloads(p, id.FBID) {
		for _, obj := range story.FindMatching(payload, id.FBID) {
			cands = append(cands, extract.FromJSONTree(obj)...)
		}
	}
	if c, ok := extract.PickBest(cands, extract.ScoreStoryAware); ok {
		return c, true
	}

	idx := strings.Index(p.Text, id.FBID)
	if idx == -1 {
		return media.Candidate{}, false
	}
	start, end := runeWindow(p.Text, idx, storyWindow)
	return extract.FromKeyPattern(p.Text[start:end], extract.VideoKeys)
}

// runeWindow returns the byte bounds of the text n characters either side of idx.
func runeWindow(text string, idx, n int) (start, end int) {
	start = idx
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	end = idx
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return start, end
}

// parsePageVideo finds any video on a page without a known story.
func parsePageVideo(p *extract.Page) (media.Candidate, bool) {
	if c, ok := extract.FromKeyPattern(p.Text, extract.VideoKeys); ok {
		return c, true
	}
	if c, ok := extract.FromMetaVideo(p); ok {
		return c, true
	}
	return extract.PickBest(extract.OnCDN(extract.FromMP4Pattern(p.Text)), extract.ScoreGeneric)
}

// parseMobileVideo finds the video on a mobile site page.
func parseMobileVideo(p *extract.Page) (media.Candidate, bool) {
	if c, ok := extract.FromRedirectHref(p); ok {
		return c, true
	}
	if c, ok := extract.FromKeyPattern(p.Text, extract.VideoKeys); ok {
		return c, true
	}
	return extract.PickBest(extract.OnCDN(extract.FromMP4Pattern(p.Text)), extract.ScoreStoryAware)
}
