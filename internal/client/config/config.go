package config

import "time"

// Config holds runtime settings for the chat CLI.
//
// Fields:
//   - ServerURL: base URL of the relay, e.g. "http://127.0.0.1:3000".
//   - RequestTimeout: limit for a single HTTP call. Replies from the
//     language model can be slow, so the default is generous.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.RequestTimeout = 90 * time.Second
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
