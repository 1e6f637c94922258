package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with EVENTLY_SERVER_* environment variables,
// after loading the dotenv file named by -e/-env (or ./.env when present).
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg.Address = getEnv("EVENTLY_SERVER_ADDRESS", cfg.Address)
	cfg.DatabaseDSN = getEnv("EVENTLY_SERVER_DATABASE_DSN", cfg.DatabaseDSN)
	cfg.SecretKey = getEnv("EVENTLY_SERVER_SECRET_KEY", cfg.SecretKey)
	cfg.AccessTokenValidityDuration = getDuration("EVENTLY_SERVER_ACCESS_TOKEN_TTL", cfg.AccessTokenValidityDuration)
	cfg.RefreshTokenValidityDuration = getDuration("EVENTLY_SERVER_REFRESH_TOKEN_TTL", cfg.RefreshTokenValidityDuration)
	cfg.SeedUsers = getEnv("EVENTLY_SERVER_SEED_USERS", cfg.SeedUsers)
	cfg.AllowedOrigins = getEnv("EVENTLY_SERVER_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.SecureCookies = getBool("EVENTLY_SERVER_SECURE_COOKIES", cfg.SecureCookies)
	cfg.LogLevel = getEnv("EVENTLY_SERVER_LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
