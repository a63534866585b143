// Package httputil provides the page fetcher and URL normalization helpers.
package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"fbstory/internal/config"
)

// TransportError reports a failed fetch: network error, timeout or unreadable body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// Options configures a Client.
type Options struct {
	Jar   http.CookieJar // Optional cookie jar
	Proxy *url.URL       // Optional proxy
}

// Client fetches pages with a fixed browser header set.
type Client struct {
	http     *http.Client
	settings config.Settings
}

// NewClient creates a hardened HTTP client with secure defaults.
// Timeouts come from the per-call contexts built from settings.
func NewClient(settings config.Settings, opts Options) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  false,
		MaxIdleConnsPerHost: 5,
	}
	if opts.Proxy != nil {
		transport.Proxy = http.ProxyURL(opts.Proxy)
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Jar:       opts.Jar,
		},
		settings: settings,
	}
}

// newRequest builds a GET request carrying the configured headers.
func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for _, h := range c.settings.Headers() {
		req.Header.Set(h.Key, h.Value)
	}
	return req, nil
}

// Fetch returns the decompressed body of target after following redirects.
// Any HTTP status is accepted; error pages are classified by the caller.
func (c *Client) Fetch(ctx context.Context, target string) (string, error) {
	if !IsHTTPURL(target) {
		return "", &TransportError{URL: target, Err: fmt.Errorf("invalid URL %q", target)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.settings.FetchTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, target)
	if err != nil {
		return "", &TransportError{URL: target, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.settings.MaxBodyBytes))
	if err != nil {
		return "", &TransportError{URL: target, Err: fmt.Errorf("reading response: %w", err)}
	}

	return string(body), nil
}

// ResolveEffective follows redirects from target and returns the final URL.
// The response body is not read.
func (c *Client) ResolveEffective(ctx context.Context, target string) (string, error) {
	if !IsHTTPURL(target) {
		return "", &TransportError{URL: target, Err: fmt.Errorf("invalid URL %q", target)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.settings.ResolveTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, target)
	if err != nil {
		return "", &TransportError{URL: target, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{URL: target, Err: err}
	}
	resp.Body.Close()

	return Normalize(resp.Request.URL.String()), nil
}
