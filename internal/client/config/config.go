package config

import "time"

// Config holds runtime settings for the gophtasks CLI.
//
// Fields:
//   - ServerURL: base URL of the task API, including the /api prefix.
//   - DatabasePath: SQLite file holding the session token and preferences.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: level of the diagnostic log written to stderr.
type Config struct {
	ServerURL      string
	DatabasePath   string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080/api"
	c.DatabasePath = "tasks.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "error"
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
