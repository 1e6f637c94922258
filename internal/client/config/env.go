package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with EVENTLY_* environment variables.
//
// A dotenv file named by -e/-env is loaded first and must exist; without the
// flag a ./.env file is loaded if present. godotenv never overrides variables
// that are already set in the process environment. Malformed durations are
// ignored and keep the previous value.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg.APIBaseURL = getEnv("EVENTLY_API_URL", cfg.APIBaseURL)
	cfg.ServerStatusURL = getEnv("EVENTLY_SERVER_STATUS_URL", cfg.ServerStatusURL)
	cfg.ConnectivityProbeURL = getEnv("EVENTLY_CONNECTIVITY_URL", cfg.ConnectivityProbeURL)
	cfg.StatusProbeTimeout = getDuration("EVENTLY_STATUS_TIMEOUT", cfg.StatusProbeTimeout)
	cfg.ConnectivityProbeTimeout = getDuration("EVENTLY_CONNECTIVITY_TIMEOUT", cfg.ConnectivityProbeTimeout)
	cfg.OnlineCheckInterval = getDuration("EVENTLY_ONLINE_CHECK_INTERVAL", cfg.OnlineCheckInterval)
	cfg.StateDir = getEnv("EVENTLY_STATE_DIR", cfg.StateDir)
	cfg.LogLevel = getEnv("EVENTLY_LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
