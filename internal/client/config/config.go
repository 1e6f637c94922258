package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Evently client.
//
// Fields:
//   - APIBaseURL: base URL the auth and API paths are appended to.
//   - ServerStatusURL: lightweight GET endpoint used for reachability probes.
//   - ConnectivityProbeURL: public URL used to tell "server down" from "offline".
//   - StatusProbeTimeout / ConnectivityProbeTimeout: hard probe deadlines.
//   - OnlineCheckInterval: how often the CLI re-probes the server.
//   - StateDir: directory for the durable session database and cookie file.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL               string
	ServerStatusURL          string
	ConnectivityProbeURL     string
	StatusProbeTimeout       time.Duration
	ConnectivityProbeTimeout time.Duration
	OnlineCheckInterval      time.Duration
	StateDir                 string
	LogLevel                 string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api/v1"
	c.ServerStatusURL = "http://127.0.0.1:8080/health"
	c.ConnectivityProbeURL = "https://www.google.com/favicon.ico"
	c.StatusProbeTimeout = 2 * time.Second
	c.ConnectivityProbeTimeout = 3 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.StateDir = defaultStateDir()
	c.LogLevel = "info"
}

// DatabasePath is the SQLite file holding the durable session tier.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.StateDir, "session.db")
}

// CookiePath is the file the persistent cookie jar is written to.
func (c *Config) CookiePath() string {
	return filepath.Join(c.StateDir, "cookies.json")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (optionally seeded from a dotenv file), JSON (if present)
// and command-line flags (if present). Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".evently"
	}
	return filepath.Join(dir, "evently")
}
