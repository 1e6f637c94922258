// Package config handles configuration for the dev backend, including
// defaults, environment, JSON overlay, and command-line flags.
package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the Evently dev backend.
//
// Fields:
//   - Address: bind address for the HTTP API.
//   - DatabaseDSN: postgres:// DSN (pgx) or a SQLite path, ":memory:" by default.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - SeedUsers: comma separated email:password pairs created at start-up.
//   - AllowedOrigins: comma separated CORS origins allowed to send credentials.
//   - SecureCookies: mark the refresh cookie Secure.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Address                      string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	SeedUsers                    string
	AllowedOrigins               string
	SecureCookies                bool
	LogLevel                     string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.DatabaseDSN = ":memory:"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.SeedUsers = "demo@evently.dev:password"
	c.AllowedOrigins = "http://localhost:3000"
	c.SecureCookies = false
	c.LogLevel = "info"
}

// Seeds splits SeedUsers into email/password pairs. Malformed items are skipped.
func (c *Config) Seeds() [][2]string {
	var out [][2]string
	for _, item := range strings.Split(c.SeedUsers, ",") {
		email, password, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok || email == "" || password == "" {
			continue
		}
		out = append(out, [2]string{email, password})
	}
	return out
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
