package credential

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
)

var proxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// LoadProxy returns the proxy configured by the first non-blank line of the file at path,
// falling back to the envName environment variable. No proxy yields nil and no error.
func LoadProxy(path, envName string) (*url.URL, error) {
	raw, err := readFirstLine(path)
	if err != nil {
		return nil, err
	}
	if raw == "" && envName != "" {
		raw = strings.TrimSpace(os.Getenv(envName))
	}
	if raw == "" {
		return nil, nil
	}
	return ParseProxy(raw)
}

// ParseProxy parses a proxy address. A bare host:port is treated as an http proxy.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty proxy address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !proxySchemes[u.Scheme] {
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q has no host", raw)
	}
	return u, nil
}

func readFirstLine(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("opening proxy file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading proxy file: %w", err)
	}
	return "", nil
}
