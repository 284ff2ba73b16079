// Package config loads client runtime settings from defaults, an optional
// JSON file, and command-line flags, in that order of precedence.
package config

import "time"

// Config holds runtime settings for the toolkit CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - RequestTimeout: per-request timeout for unary API calls.
//   - RollbackOnFailure: revert an optimistic toggle locally when the server
//     rejects it, instead of waiting for the next pushed snapshot.
//   - ProfileDBPath: location of the local SQLite profile store.
//   - DemoMode: present device facts with simulated values where real
//     probes are unavailable.
type Config struct {
	ServerURL         string
	RequestTimeout    time.Duration
	RollbackOnFailure bool
	ProfileDBPath     string
	DemoMode          bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 12 * time.Second
	c.RollbackOnFailure = false
	c.ProfileDBPath = "modtoolkit.db"
	c.DemoMode = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
