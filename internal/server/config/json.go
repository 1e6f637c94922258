package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/flagx"
	"github.com/dmitrijs2005/evently-client/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept both "1m" strings and integer nanoseconds. Zero values leave the
// current setting alone.
type JsonConfig struct {
	Address                      string         `json:"address"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	SeedUsers                    string         `json:"seed_users"`
	AllowedOrigins               string         `json:"allowed_origins"`
	SecureCookies                *bool          `json:"secure_cookies"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson loads the JSON file named by -c/-config, if any, into config.
// An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.Address, c.Address)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, time.Duration(c.AccessTokenValidityDuration.Duration))
	setDuration(&config.RefreshTokenValidityDuration, time.Duration(c.RefreshTokenValidityDuration.Duration))
	setString(&config.SeedUsers, c.SeedUsers)
	setString(&config.AllowedOrigins, c.AllowedOrigins)
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
