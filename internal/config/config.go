// Package config loads runtime configuration from an optional YAML file
// with ZAPI_-prefixed environment variable overrides.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Analysis AnalysisConfig `koanf:"analysis"`
	Cost     CostConfig     `koanf:"cost"`
	Vault    VaultConfig    `koanf:"vault"`
	Connect  ConnectConfig  `koanf:"connect"`
	Capture  CaptureConfig  `koanf:"capture"`
	History  HistoryConfig  `koanf:"history"`
}

// AnalysisConfig holds the classifier rule tables. The sets are
// configuration so deployments can extend them without code changes.
type AnalysisConfig struct {
	// StaticExtensions are URL path extensions (lowercase, no dot)
	// tagged as static assets.
	StaticExtensions []string `koanf:"static_extensions"`

	// NoiseStatuses are response status codes tagged as transport
	// noise.
	NoiseStatuses []int `koanf:"noise_statuses"`

	// APIPathMarkers are path substrings that indicate an API endpoint.
	APIPathMarkers []string `koanf:"api_path_markers"`
}

// CostConfig holds the cost/time estimation coefficients. These are
// deliberately configuration, not constants: the authoritative values
// belong to the downstream documentation service.
type CostConfig struct {
	BaseFeeUSD         float64 `koanf:"base_fee_usd"`
	PerEntryRateUSD    float64 `koanf:"per_entry_rate_usd"`
	AvgSecondsPerEntry float64 `koanf:"avg_seconds_per_entry"`
	FloorMinutes       float64 `koanf:"floor_minutes"`
}

type VaultConfig struct {
	// MasterSecret seeds per-organization key derivation. Required for
	// any BYOK operation.
	MasterSecret string `koanf:"master_secret"`
	// Iterations is the PBKDF2 iteration count.
	Iterations int `koanf:"iterations"`
}

type ConnectConfig struct {
	// TokenURL is the base URL of the token exchange service.
	TokenURL string `koanf:"token_url"`
	// APIURL is the base URL of the discovery API (token validation,
	// uploads).
	APIURL string `koanf:"api_url"`
}

// CaptureConfig enumerates the recognized browser-capture options.
type CaptureConfig struct {
	Headless bool `koanf:"headless"`
	// WaitUntil is the navigation-complete strategy: load,
	// domcontentloaded, or networkidle.
	WaitUntil string `koanf:"wait_until"`
	// NavTimeoutSeconds bounds a single navigation.
	NavTimeoutSeconds int `koanf:"nav_timeout_seconds"`
	// SlowMoMillis delays each driver operation, for debugging.
	SlowMoMillis int `koanf:"slow_mo_millis"`
}

type HistoryConfig struct {
	// DBPath is the sqlite file for the run history. Empty disables
	// history.
	DBPath string `koanf:"db_path"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			StaticExtensions: []string{
				"js", "mjs", "css", "map",
				"png", "jpg", "jpeg", "gif", "svg", "webp", "avif", "ico",
				"woff", "woff2", "ttf", "otf", "eot",
			},
			NoiseStatuses:  []int{101, 204, 205},
			APIPathMarkers: []string{"/api/", "/v1/", "/v2/", "/v3/", "/graphql", "/rest/"},
		},
		Cost: CostConfig{
			BaseFeeUSD:         5.00,
			PerEntryRateUSD:    0.05,
			AvgSecondsPerEntry: 3.0,
			FloorMinutes:       5.0,
		},
		Vault: VaultConfig{
			Iterations: 100000,
		},
		Connect: ConnectConfig{
			TokenURL: "https://connect.adopt.ai",
			APIURL:   "https://api.adopt.ai",
		},
		Capture: CaptureConfig{
			Headless:          true,
			WaitUntil:         "load",
			NavTimeoutSeconds: 30,
		},
		History: HistoryConfig{
			DBPath: "",
		},
	}
}

// Load reads configuration from path (optional, YAML) and overlays
// ZAPI_-prefixed environment variables. Double underscores separate
// nesting levels: ZAPI_VAULT__MASTER_SECRET maps to
// vault.master_secret.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("ZAPI_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "ZAPI_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
