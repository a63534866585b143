// Package config handles TOML-based configuration loading and validation.
// The loaded Config is turned into an immutable Settings value once per resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	CookieFile     string        `toml:"cookie_file"`
	ProxyFile      string        `toml:"proxy_file"`
	ProxyEnv       string        `toml:"proxy_env"`
	ResolveTimeout time.Duration `toml:"resolve_timeout"`
	FetchTimeout   time.Duration `toml:"fetch_timeout"`
	UserAgent      string        `toml:"user_agent"`
	AcceptLanguage string        `toml:"accept_language"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
	BlockMarkers   []string      `toml:"block_markers"`
	Debug          bool          `toml:"debug"`
}

// DefaultUserAgent is a desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultBlockMarkers are lowercase phrases found on rate-limit pages.
// The escaped entries match copy embedded in JSON strings.
var DefaultBlockMarkers = []string{
	"temporarily blocked",
	"you have been temporarily blocked",
	"you used this feature too often",
	"вы временно заблокированы",
	"слишком часто использовали эту функцию",
	"\\u0432\\u0440\\u0435\\u043c\\u0435\\u043d\\u043d\\u043e",
	"\\u0437\\u0430\\u0431\\u043b\\u043e\\u043a\\u0438\\u0440\\u043e\\u0432",
	"\\u0441\\u043b\\u0438\\u0448\\u043a\\u043e\\u043c \\u0447\\u0430\\u0441\\u0442\\u043e",
	"cometerrorroot.react",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		CookieFile:     "/app/storage/cookies.txt",
		ProxyFile:      "/app/storage/proxy.txt",
		ProxyEnv:       "YTDL_PROXY",
		ResolveTimeout: 20 * time.Second,
		FetchTimeout:   30 * time.Second,
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
		MaxBodyBytes:   15 * 1024 * 1024,
		BlockMarkers:   append([]string(nil), DefaultBlockMarkers...),
		Debug:          false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fbstory"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fbstory"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the default config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path and merges with defaults.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve_timeout must be positive, got %s", c.ResolveTimeout)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("max_body_bytes must be at least 1024, got %d", c.MaxBodyBytes)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}
	for _, m := range c.BlockMarkers {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("block_markers cannot contain empty entries")
		}
	}
	return nil
}

// Header is a single request header. Order is preserved when sending.
type Header struct {
	Key   string
	Value string
}

// Settings is the immutable per-resolution view of the configuration.
type Settings struct {
	headers        []Header
	markers        []string
	ResolveTimeout time.Duration
	FetchTimeout   time.Duration
	MaxBodyBytes   int64
}

// Settings snapshots the configuration. Later changes to c do not affect the result.
func (c *Config) Settings() Settings {
	markers := make([]string, 0, len(c.BlockMarkers))
	for _, m := range c.BlockMarkers {
		markers = append(markers, strings.ToLower(m))
	}
	return Settings{
		headers: []Header{
			{"User-Agent", c.UserAgent},
			{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"},
			{"Accept-Language", c.AcceptLanguage},
			{"Sec-Fetch-Site", "none"},
			{"Sec-Fetch-Mode", "navigate"},
			{"Sec-Fetch-User", "?1"},
			{"Sec-Fetch-Dest", "document"},
		},
		markers:        markers,
		ResolveTimeout: c.ResolveTimeout,
		FetchTimeout:   c.FetchTimeout,
		MaxBodyBytes:   c.MaxBodyBytes,
	}
}

// Headers returns a copy of the request header set.
func (s Settings) Headers() []Header {
	return append([]Header(nil), s.headers...)
}

// BlockMarkers returns a copy of the lowercase block-page markers.
func (s Settings) BlockMarkers() []string {
	return append([]string(nil), s.markers...)
}
