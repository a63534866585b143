// Package detect classifies fetched pages and URLs as hostile:
// consent interstitials and temporary rate-limit blocks.
package detect

import (
	"net/url"
	"strings"

	"fbstory/internal/config"
	"fbstory/internal/httputil"
)

// consentPath prefixes the interstitial asking the viewer to accept a policy or subscription.
const consentPath = "/privacy/consent"

// Detector matches pages against a fixed marker set.
type Detector struct {
	markers []string
}

// New creates a detector using the block markers in settings.
func New(settings config.Settings) *Detector {
	return &Detector{markers: settings.BlockMarkers()}
}

// IsConsentURL reports whether raw points at a consent or subscription wall.
func IsConsentURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !httputil.IsSiteHost(u.Hostname()) {
		return false
	}
	if strings.HasPrefix(strings.ToLower(u.Path), consentPath) {
		return true
	}
	return strings.Contains(strings.ToLower(u.Query().Get("flow")), "ad_free_subscription")
}

// ShouldRefetch reports whether raw is a site page worth fetching directly:
// a reel, a watch page or a story.php endpoint.
func ShouldRefetch(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !httputil.IsSiteHost(u.Hostname()) {
		return false
	}
	path := strings.ToLower(u.Path)
	return strings.HasPrefix(path, "/reel/") || path == "/watch" || strings.HasPrefix(path, "/story.php")
}

// IsStoryEndpoint reports whether raw is a story.php page.
func IsStoryEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(u.Path), "/story.php")
}

// IsTemporaryBlockPage reports whether body contains any block marker, ignoring case.
func (d *Detector) IsTemporaryBlockPage(body string) bool {
	if body == "" || len(d.markers) == 0 {
		return false
	}
	lower := strings.ToLower(body)
	for _, m := range d.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
