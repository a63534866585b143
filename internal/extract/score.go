package extract

import (
	"net/url"
	"strings"

	"fbstory/internal/httputil"
	"fbstory/internal/media"
)

// Scorer ranks a candidate URL. Higher is better.
type Scorer func(rawURL string) int

// ScoreGeneric prefers dedicated video hosts on the CDN.
func ScoreGeneric(rawURL string) int {
	host := hostOf(rawURL)
	score := 0
	if strings.HasPrefix(host, "video.") {
		score += 3
	}
	if strings.Contains(host, httputil.CDNDomain) {
		score += 2
	}
	if strings.Contains(host, "scontent") {
		score++
	}
	return score
}

// ScoreStoryAware prefers HD progressive URLs on CDN video hosts and demotes DASH manifests.
func ScoreStoryAware(rawURL string) int {
	lower := strings.ToLower(rawURL)
	host := hostOf(rawURL)
	score := 0
	if strings.Contains(lower, "playable_url_quality_hd") {
		score += 4
	}
	if strings.Contains(lower, "hd") {
		score += 2
	}
	if strings.HasPrefix(host, "video.") {
		score += 3
	}
	if strings.Contains(host, httputil.CDNDomain) {
		score += 2
	}
	if strings.Contains(lower, ".mpd") || strings.Contains(lower, "dash") {
		score--
	}
	return score
}

// PickBest returns the highest scoring candidate. Ties go to the earliest.
func PickBest(cands []media.Candidate, score Scorer) (media.Candidate, bool) {
	if len(cands) == 0 {
		return media.Candidate{}, false
	}
	best, bestScore := cands[0], score(cands[0].URL)
	for _, c := range cands[1:] {
		if s := score(c.URL); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
