package httputil

import (
	"html"
	"net/url"
	"strings"
)

const (
	// SiteDomain is the domain family of story pages.
	SiteDomain = "facebook.com"

	// MobileHost serves the markup-simplified variant of the site.
	MobileHost = "mbasic.facebook.com"

	// CDNDomain is the media host family.
	CDNDomain = "fbcdn.net"
)

// escapeReplacer undoes the JSON escaping found in inline script payloads.
var escapeReplacer = strings.NewReplacer(
	"\\u0026", "&",
	"\\u002F", "/",
	"\\u002f", "/",
	"\\/", "/",
)

// Normalize reverses JSON and HTML escaping in a scraped URL.
// Decoding repeats until the string stops changing so nested escapes are fully undone.
func Normalize(raw string) string {
	for {
		next := html.UnescapeString(escapeReplacer.Replace(raw))
		if next == raw {
			return raw
		}
		raw = next
	}
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsSiteHost reports whether a hostname (without port) belongs to the site's domain family.
func IsSiteHost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == SiteDomain || strings.HasSuffix(hostname, "."+SiteDomain)
}

// IsCDNURL reports whether the URL text points at the media CDN.
func IsCDNURL(raw string) bool {
	return strings.Contains(raw, CDNDomain)
}

// StripByteRange removes bytestart/byteend from CDN video URLs.
// Those parameters request a partial range and truncate playback.
// Every other URL, including unparsable ones, is returned unchanged.
func StripByteRange(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	if !strings.Contains(strings.ToLower(u.Host), CDNDomain) {
		return raw
	}
	if !strings.Contains(strings.ToLower(u.Path), ".mp4") {
		return raw
	}

	// Rewrite the raw query in place so the remaining parameters keep their exact encoding.
	q := strings.IndexByte(raw, '?')
	end := len(raw)
	if h := strings.IndexByte(raw[q:], '#'); h != -1 {
		end = q + h
	}

	params := strings.Split(raw[q+1:end], "&")
	kept := make([]string, 0, len(params))
	for _, p := range params {
		key := p
		if i := strings.IndexByte(p, '='); i != -1 {
			key = p[:i]
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if key == "bytestart" || key == "byteend" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == len(params) {
		return raw
	}
	if len(kept) == 0 {
		return raw[:q] + raw[end:]
	}
	return raw[:q+1] + strings.Join(kept, "&") + raw[end:]
}

// ToMobileVariant rewrites a site URL to the mobile host, keeping path, query and fragment.
// Foreign or unparsable URLs are returned unchanged.
func ToMobileVariant(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !IsSiteHost(u.Hostname()) {
		return raw
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Host = MobileHost
	return u.String()
}

// SameURL compares two URLs after normalization.
func SameURL(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
