// Package credential loads request credentials: Netscape cookie files and proxy settings.
package credential

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Netscape cookie file columns: domain, subdomains flag, path, secure, expires, name, value
const numFields = 7

// httpOnlyPrefix marks HttpOnly cookies in files written by curl and browser exporters.
const httpOnlyPrefix = "#HttpOnly_"

// CookieFormatExample shows one valid cookie line.
const CookieFormatExample = ".example.com\tTRUE\t/\tFALSE\t1716239021\tsessionid\tabc123"

// Cookie is one parsed line of a Netscape cookie file.
type Cookie struct {
	Domain            string
	IncludeSubdomains bool
	Path              string
	Secure            bool
	HTTPOnly          bool
	Expires           int64 // Unix seconds, 0 for a session cookie
	Name              string
	Value             string
}

// ParseLine parses a single cookie line. Comments, blank lines and lines
// with fewer than seven tab-separated fields are rejected.
func ParseLine(line string) (Cookie, bool) {
	line = strings.TrimLeft(strings.TrimRight(line, "\r\n"), " ")
	var c Cookie
	if strings.HasPrefix(line, httpOnlyPrefix) {
		c.HTTPOnly = true
		line = strings.TrimPrefix(line, httpOnlyPrefix)
	} else if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return Cookie{}, false
	}
	if strings.TrimSpace(line) == "" {
		return Cookie{}, false
	}

	fields := strings.Split(line, "\t")
	if len(fields) < numFields {
		return Cookie{}, false
	}

	c.Domain = strings.TrimSpace(fields[0])
	c.IncludeSubdomains = strings.EqualFold(fields[1], "TRUE")
	c.Path = fields[2]
	c.Secure = strings.EqualFold(fields[3], "TRUE")
	c.Name = fields[5]
	// Values may themselves contain tabs.
	c.Value = strings.Join(fields[6:], "\t")

	if c.Domain == "" || c.Name == "" {
		return Cookie{}, false
	}
	if c.Path == "" {
		c.Path = "/"
	}

	if exp := strings.TrimSpace(fields[4]); exp != "" {
		n, err := strconv.ParseInt(exp, 10, 64)
		if err != nil {
			return Cookie{}, false
		}
		c.Expires = n
	}

	return c, true
}

// Parse reads cookie lines from content and counts the lines it could not parse.
// Comment and blank lines are neither valid nor invalid.
func Parse(content string) (cookies []Cookie, invalid int) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, httpOnlyPrefix) {
			continue
		}
		c, ok := ParseLine(line)
		if !ok {
			invalid++
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies, invalid
}

// httpCookie converts c to the form accepted by a cookie jar, with the URL it belongs to.
func (c Cookie) httpCookie() (*url.URL, *http.Cookie) {
	host := strings.TrimPrefix(c.Domain, ".")
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: host, Path: c.Path}

	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	// Host-only cookies carry no Domain attribute.
	if c.IncludeSubdomains || strings.HasPrefix(c.Domain, ".") {
		hc.Domain = host
	}
	if c.Expires > 0 {
		hc.Expires = time.Unix(c.Expires, 0)
	}
	return u, hc
}

// NewJar builds a cookie jar holding cookies.
func NewJar(cookies []Cookie) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	for _, c := range cookies {
		u, hc := c.httpCookie()
		jar.SetCookies(u, []*http.Cookie{hc})
	}
	return jar, nil
}

// LoadCookieJar reads a Netscape cookie file into a jar.
// A missing file or empty path yields a nil jar and no error.
func LoadCookieJar(path string) (http.CookieJar, int, error) {
	if path == "" {
		return nil, 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("reading cookie file: %w", err)
	}

	cookies, _ := Parse(string(data))
	jar, err := NewJar(cookies)
	if err != nil {
		return nil, 0, err
	}
	return jar, len(cookies), nil
}

// CheckResult summarizes a cookie file.
type CheckResult struct {
	Valid   int
	Invalid int
}

// Check counts the valid and invalid cookie lines in content.
func Check(content string) CheckResult {
	cookies, invalid := Parse(content)
	return CheckResult{Valid: len(cookies), Invalid: invalid}
}
