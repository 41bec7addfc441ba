package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Secret string // Required: HS256 signing secret for both token types

	AccessTTL          time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL         time.Duration // Optional: refresh token lifetime (default: 720h / 30 days)
	BlocklistRetention time.Duration // Optional: minimum time a revoked jti stays listed (default: access TTL)

	RedisAddr     string // Optional: revocation/refresh store address (default: localhost:6379)
	RedisPassword string // Optional: Redis AUTH password
	RedisDB       int    // Optional: Redis logical database (default: 0)
	KeyPrefix     string // Optional: prefix for every Redis key (default: "auth:")

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)

	// Optional seed user, created at startup when it does not exist yet.
	// Gives a fresh deployment its first account without a manual insert.
	SeedUsername    string
	SeedPassword    string
	SeedWorkspace   string
	SeedPermissions []string // space-delimited in AUTH_SEED_PERMISSIONS

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

var errMissingSecret = errors.New("AUTH_SECRET must be set")

func LoadConfig() (Config, error) {
	cfg := Config{
		Secret:              os.Getenv("AUTH_SECRET"),
		AccessTTL:           getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:          getEnvDurationOrDefault("AUTH_REFRESH_TTL", 30*24*time.Hour),
		RedisAddr:           getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("AUTH_REDIS_PASSWORD"),
		RedisDB:             getEnvIntOrDefault("AUTH_REDIS_DB", 0),
		KeyPrefix:           getEnvOrDefault("AUTH_KEY_PREFIX", "auth:"),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// Revoked jtis must stay listed at least as long as a token could
	// still be alive.
	cfg.BlocklistRetention = getEnvDurationOrDefault("AUTH_BLOCKLIST_RETENTION", cfg.AccessTTL)

	cfg.SeedUsername = os.Getenv("AUTH_SEED_USERNAME")
	cfg.SeedPassword = os.Getenv("AUTH_SEED_PASSWORD")
	cfg.SeedWorkspace = os.Getenv("AUTH_SEED_WORKSPACE")
	cfg.SeedPermissions = strings.Fields(os.Getenv("AUTH_SEED_PERMISSIONS"))

	if cfg.Secret == "" {
		return Config{}, errMissingSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration syntax (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Accept plain integers as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
