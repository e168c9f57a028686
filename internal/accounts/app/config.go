package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Required: issuer claim for tokens
	BootstrapToken string // Optional: token required to perform bootstrap
	BaseURL        string // Public origin used when building invitation links

	SigningKeyFile       string        // Path to PEM-encoded Ed25519 signing key (generated if absent)
	DatabaseFile         string        // Path to SQLite database file (default: ./accounts.db)
	PepperFile           string        // Path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	AccessTokenTTL       time.Duration // Access token lifetime (default: 15m)
	RefreshTokenTTL      time.Duration // Refresh token lifetime (default: 7 days)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("ACCOUNTS_ISSUER", "studyconnect-accounts"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"), // Optional: if unset, bootstrap is disabled
		BaseURL:        getEnvOrDefault("ACCOUNTS_BASE_URL", "http://localhost:8080"),

		SigningKeyFile:       getEnvOrDefault("ACCOUNTS_SIGNING_KEY_FILE", "signing.pem"),
		DatabaseFile:         getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:           getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		AccessTokenTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:      getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
	}

	return cfg
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
