// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	APIKey     string
	AppVersion string

	ModelsDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CentralStoreURL    string
	CentralStoreAPIKey string

	RateLimitPerMinute int
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first without overriding real environment variables.
// Every setting has a usable default; nothing here is fatal.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	return &Config{
		Port:               envOr("PORT", "8080"),
		APIKey:             os.Getenv("API_KEY"),
		AppVersion:         envOr("APP_VERSION", "1.0.0"),
		ModelsDir:          envOr("MODELS_DIR", "models"),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		CentralStoreURL:    os.Getenv("CENTRAL_STORE_URL"),
		CentralStoreAPIKey: os.Getenv("CENTRAL_STORE_API_KEY"),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}
