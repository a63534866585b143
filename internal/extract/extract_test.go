package extract

import (
	"testing"

	"github.com/tidwall/gjson"

	"fbstory/internal/media"
)

func urls(cands []media.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.URL
	}
	return out
}

func TestFromJSONTree(t *testing.T) {
	doc := `{
		"video": {
			"playable_url": "https://video.xx.fbcdn.net/v/plain.mp4?a=1&b=2",
			"playable_url_quality_hd": "https://video.xx.fbcdn.net/v/hd.mp4",
			"dash_manifest_url": "https://video.xx.fbcdn.net/v/manifest.mpd",
			"video_url": "not a url",
			"playback_url": 12,
			"video_versions": [
				{"url": "https://scontent.xx.fbcdn.net/v/vv1.mp4"},
				{"width": 10}
			]
		},
		"fallback": {"video_versions": [], "video_versions2": [{"url": "https://video.xx.fbcdn.net/v/vv2.mp4"}]}
	}`

	got := urls(FromJSONTree(gjson.Parse(doc)))
	want := []string{
		"https://video.xx.fbcdn.net/v/hd.mp4",
		"https://video.xx.fbcdn.net/v/plain.mp4?a=1&b=2",
		"https://video.xx.fbcdn.net/v/manifest.mpd",
		"https://scontent.xx.fbcdn.net/v/vv1.mp4",
		"https://video.xx.fbcdn.net/v/vv2.mp4",
	}
	if len(got) != len(want) {
		t.Fatalf("FromJSONTree() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFromJSONTreeSources(t *testing.T) {
	cands := FromJSONTree(gjson.Parse(`{"playable_url":"https://video.fbcdn.net/a.mp4","video_versions":[{"url":"https://video.fbcdn.net/b.mp4"}]}`))
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	if cands[0].Source != media.JSONField || cands[1].Source != media.VideoVersions {
		t.Errorf("sources = %s, %s", cands[0].Source, cands[1].Source)
	}
}

func TestHDOutranksSD(t *testing.T) {
	doc := `{"story_id":"5","attachments":[{"media":{
		"playable_url_quality_sd":"https://video.xx.fbcdn.net/v/sd.mp4",
		"playable_url_quality_hd":"https://video.xx.fbcdn.net/v/hd.mp4"
	}}]}`

	best, ok := PickBest(FromJSONTree(gjson.Parse(doc)), ScoreStoryAware)
	if !ok {
		t.Fatal("PickBest() found nothing")
	}
	if best.URL != "https://video.xx.fbcdn.net/v/hd.mp4" {
		t.Errorf("PickBest() = %q, want the HD URL", best.URL)
	}
}

func TestFromKeyPattern(t *testing.T) {
	text := `{"playable_url":"https:\/\/video.xx.fbcdn.net\/v\/sd.mp4?x=1&y=2","browser_native_hd_url": "https://video.xx.fbcdn.net/v/hd.mp4","video_url":"x"}`

	c, ok := FromKeyPattern(text, VideoKeys)
	if !ok {
		t.Fatal("FromKeyPattern() found nothing")
	}
	if c.URL != "https://video.xx.fbcdn.net/v/hd.mp4" {
		t.Errorf("FromKeyPattern() = %q, want the earlier key's value", c.URL)
	}

	c, ok = FromKeyPattern(text, []string{"playable_url"})
	if !ok || c.URL != "https://video.xx.fbcdn.net/v/sd.mp4?x=1&y=2" {
		t.Errorf("FromKeyPattern(playable_url) = %q, %v", c.URL, ok)
	}

	if _, ok := FromKeyPattern(text, []string{"video_url"}); ok {
		t.Error("non-URL values should be skipped")
	}
	if _, ok := FromKeyPattern("", VideoKeys); ok {
		t.Error("empty text should find nothing")
	}
}

func TestFromMP4Pattern(t *testing.T) {
	text := `<a href="https://video.xx.fbcdn.net/v/one.mp4?_nc_ht=a&amp;oh=1">x</a>` +
		`<script>{"u":"https:\/\/video.xx.fbcdn.net\/v\/two.mp4?a=1&b=2"}</script>` +
		`<img src="https://scontent.xx.fbcdn.net/v/pic.jpg">` +
		` https://example.com/clip.mp4 `

	got := urls(FromMP4Pattern(text))
	want := []string{
		"https://video.xx.fbcdn.net/v/one.mp4?_nc_ht=a&oh=1",
		"https://example.com/clip.mp4",
		"https://video.xx.fbcdn.net/v/two.mp4?a=1&b=2",
	}
	if len(got) != len(want) {
		t.Fatalf("FromMP4Pattern() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d = %q, want %q", i, got[i], want[i])
		}
	}

	cdn := OnCDN(FromMP4Pattern(text))
	if len(cdn) != 2 {
		t.Errorf("OnCDN() kept %d, want 2", len(cdn))
	}
}

func TestMetaCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{
			"og url",
			`<html><head><meta property="og:url" content="https://www.facebook.com/reel/123"></head><body></body></html>`,
			"https://www.facebook.com/reel/123",
			true,
		},
		{
			"content before property",
			`<html><head><meta content="https://www.facebook.com/watch?v=1&amp;x=2" property="og:url"></head></html>`,
			"https://www.facebook.com/watch?v=1&x=2",
			true,
		},
		{
			"canonical link",
			`<html><head><link href="https://www.facebook.com/story.php?story_fbid=9" rel="canonical"></head></html>`,
			"https://www.facebook.com/story.php?story_fbid=9",
			true,
		},
		{"none", `<html><head><title>x</title></head></html>`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MetaCanonicalURL(NewPage(tt.html))
			if ok != tt.ok || got != tt.want {
				t.Errorf("MetaCanonicalURL() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFromMetaVideo(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{
			"og video",
			`<html><head><meta property="og:video" content="https://video.xx.fbcdn.net/v/og.mp4"></head></html>`,
			"https://video.xx.fbcdn.net/v/og.mp4",
			true,
		},
		{
			"secure url only",
			`<html><head><meta property="og:video:secure_url" content="https://video.xx.fbcdn.net/v/secure.mp4"></head></html>`,
			"https://video.xx.fbcdn.net/v/secure.mp4",
			true,
		},
		{
			"tag in body",
			`<html><body><meta content="https://video.xx.fbcdn.net/v/body.mp4" property="og:video"></body></html>`,
			"https://video.xx.fbcdn.net/v/body.mp4",
			true,
		},
		{"relative ignored", `<html><head><meta property="og:video" content="/v/rel.mp4"></head></html>`, "", false},
		{"none", `<html></html>`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromMetaVideo(NewPage(tt.html))
			if ok != tt.ok || got.URL != tt.want {
				t.Errorf("FromMetaVideo() = %q, %v; want %q, %v", got.URL, ok, tt.want, tt.ok)
			}
			if ok && got.Source != media.MetaOG {
				t.Errorf("source = %s, want meta_og", got.Source)
			}
		})
	}
}

func TestFromRedirectHref(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{
			"relative link",
			`<a href="/video_redirect/?src=https%3A%2F%2Fvideo.xx.fbcdn.net%2Fv%2Fm.mp4%3Fbytestart%3D0%26oh%3D1">Play</a>`,
			"https://video.xx.fbcdn.net/v/m.mp4?bytestart=0&oh=1",
			true,
		},
		{
			"absolute link with entity",
			`<a href="https://mbasic.facebook.com/video_redirect/?src=https%3A%2F%2Fvideo.fbcdn.net%2Fa.mp4&amp;source=media">Play</a>`,
			"https://video.fbcdn.net/a.mp4",
			true,
		},
		{
			"skips link without src",
			`<a href="/video_redirect/?id=1">a</a><a href="/video_redirect/?src=https%3A%2F%2Fvideo.fbcdn.net%2Fb.mp4">b</a>`,
			"https://video.fbcdn.net/b.mp4",
			true,
		},
		{"relative src", `<a href="/video_redirect/?src=%2Fv%2Fx.mp4">a</a>`, "", false},
		{"no links", `<a href="/story.php?story_fbid=1">a</a>`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromRedirectHref(NewPage(tt.html))
			if ok != tt.ok || got.URL != tt.want {
				t.Errorf("FromRedirectHref() = %q, %v; want %q, %v", got.URL, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestScriptPayloads(t *testing.T) {
	html := `<html><body>
		<script type="application/json" data-sjs>{"require":[["RelayPrefetchedStreamCache",{"a":1}]]}</script>
		<script type="application/json" data-sjs>{"story_fbid":"77"}</script>
		<script type="application/json" data-sjs>{"unrelated":true}</script>
		<script type="application/json" data-sjs>{"story_fbid":"77",</script>
		<script type="application/json">{"story_fbid":"77"}</script>
	</body></html>`

	got := ScriptPayloads(NewPage(html), "77")
	if len(got) != 2 {
		t.Fatalf("ScriptPayloads() returned %d blocks, want 2", len(got))
	}
	if got[1].Get("story_fbid").String() != "77" {
		t.Errorf("second block = %s", got[1].Raw)
	}
}

func TestScoreGeneric(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"https://video.xx.fbcdn.net/v/a.mp4", 5},
		{"https://scontent.xx.fbcdn.net/v/a.mp4", 3},
		{"https://example.com/a.mp4", 0},
		{"::bad", 0},
	}
	for _, tt := range tests {
		if got := ScoreGeneric(tt.url); got != tt.want {
			t.Errorf("ScoreGeneric(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestScoreStoryAware(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"https://video.xx.fbcdn.net/v/clip_hd.mp4", 7},
		{"https://video.xx.fbcdn.net/v/clip.mp4", 5},
		{"https://video.xx.fbcdn.net/v/manifest.mpd", 4},
		{"https://example.com/playable_url_quality_hd", 6},
	}
	for _, tt := range tests {
		if got := ScoreStoryAware(tt.url); got != tt.want {
			t.Errorf("ScoreStoryAware(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestPickBest(t *testing.T) {
	low := media.Candidate{URL: "https://example.com/a.mp4"}
	high := media.Candidate{URL: "https://video.xx.fbcdn.net/v/a.mp4"}
	tie := media.Candidate{URL: "https://video.yy.fbcdn.net/v/b.mp4"}

	tests := []struct {
		name  string
		cands []media.Candidate
		want  string
	}{
		{"high last", []media.Candidate{low, high}, high.URL},
		{"high first", []media.Candidate{high, low}, high.URL},
		{"tie keeps first", []media.Candidate{low, high, tie}, high.URL},
		{"tie reversed", []media.Candidate{tie, high}, tie.URL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickBest(tt.cands, ScoreGeneric)
			if !ok || got.URL != tt.want {
				t.Errorf("PickBest() = %q, %v; want %q", got.URL, ok, tt.want)
			}
		})
	}

	if _, ok := PickBest(nil, ScoreGeneric); ok {
		t.Error("PickBest(nil) should report false")
	}
}
