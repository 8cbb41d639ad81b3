// Package config loads straycare client configuration from
// ~/.straycare/config.yaml with STRAYCARE_* environment overrides.
// Every value has a default so the client runs without a config file;
// the only hard requirement is an API base URL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all straycare client configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Maps  MapsConfig  `yaml:"maps"`
	Cache CacheConfig `yaml:"cache"`
	Auth  AuthConfig  `yaml:"auth"`
	UI    UIConfig    `yaml:"ui"`
}

// APIConfig configures the backend REST connection.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// MapsConfig configures the geocoding provider. An empty APIKey degrades
// geocoding to coordinate-only records; it never aborts startup.
type MapsConfig struct {
	APIKey         string `yaml:"api_key"`
	GeocodeTimeout string `yaml:"geocode_timeout"`
}

// CacheConfig sets the per-resource staleness windows.
type CacheConfig struct {
	ListTTL   string `yaml:"list_ttl"`
	StatsTTL  string `yaml:"stats_ttl"`
	NearbyTTL string `yaml:"nearby_ttl"`
}

// AuthConfig configures session handling.
type AuthConfig struct {
	InitTimeout string `yaml:"init_timeout"`
}

// UIConfig configures terminal presentation.
type UIConfig struct {
	Theme string `yaml:"theme"` // "dark" or "light"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: "30s",
		},
		Maps: MapsConfig{
			GeocodeTimeout: "10s",
		},
		Cache: CacheConfig{
			ListTTL:   "5m",
			StatsTTL:  "10m",
			NearbyTTL: "2m",
		},
		Auth: AuthConfig{
			InitTimeout: "10s",
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// DefaultDir returns ~/.straycare, creating nothing.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".straycare"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies STRAYCARE_* environment overrides on top of file values.
func (c *Config) applyEnv() {
	setIfPresent := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setIfPresent(&c.API.BaseURL, "STRAYCARE_API_BASE_URL")
	setIfPresent(&c.API.Timeout, "STRAYCARE_API_TIMEOUT")
	setIfPresent(&c.Maps.APIKey, "STRAYCARE_MAPS_API_KEY")
	setIfPresent(&c.Maps.GeocodeTimeout, "STRAYCARE_MAPS_GEOCODE_TIMEOUT")
	setIfPresent(&c.Cache.ListTTL, "STRAYCARE_CACHE_LIST_TTL")
	setIfPresent(&c.Cache.StatsTTL, "STRAYCARE_CACHE_STATS_TTL")
	setIfPresent(&c.Cache.NearbyTTL, "STRAYCARE_CACHE_NEARBY_TTL")
	setIfPresent(&c.Auth.InitTimeout, "STRAYCARE_AUTH_INIT_TIMEOUT")
	setIfPresent(&c.UI.Theme, "STRAYCARE_UI_THEME")
}

// Validate checks the values a session cannot run without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	for name, val := range map[string]string{
		"api.timeout":          c.API.Timeout,
		"maps.geocode_timeout": c.Maps.GeocodeTimeout,
		"cache.list_ttl":       c.Cache.ListTTL,
		"cache.stats_ttl":      c.Cache.StatsTTL,
		"cache.nearby_ttl":     c.Cache.NearbyTTL,
		"auth.init_timeout":    c.Auth.InitTimeout,
	} {
		if val == "" {
			continue
		}
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("%s: invalid duration %q", name, val)
		}
	}
	return nil
}

// Save writes the config as yaml, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// APITimeout returns the parsed API timeout.
func (c *Config) APITimeout() time.Duration { return duration(c.API.Timeout, 30*time.Second) }

// GeocodeTimeout returns the parsed geocoding timeout.
func (c *Config) GeocodeTimeout() time.Duration {
	return duration(c.Maps.GeocodeTimeout, 10*time.Second)
}

// ListTTL is the staleness window for list and detail reads.
func (c *Config) ListTTL() time.Duration { return duration(c.Cache.ListTTL, 5*time.Minute) }

// StatsTTL is the staleness window for stats reads.
func (c *Config) StatsTTL() time.Duration { return duration(c.Cache.StatsTTL, 10*time.Minute) }

// NearbyTTL is the staleness window for geographic and pending reads.
func (c *Config) NearbyTTL() time.Duration { return duration(c.Cache.NearbyTTL, 2*time.Minute) }

// AuthInitTimeout bounds the session validation race at startup.
func (c *Config) AuthInitTimeout() time.Duration {
	return duration(c.Auth.InitTimeout, 10*time.Second)
}
