package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aakar745/form-registration/pkg/jwtx"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret string // Required: HS256 signing secret for all tokens
	Issuer    string // Optional: issuer claim for tokens (default: form-registration)

	SessionTTL time.Duration // Optional: session token lifetime (default: 24h)
	PendingTTL time.Duration // Optional: pending-MFA token lifetime (default: 5m)
	TOTPIssuer string        // Optional: issuer shown in authenticator apps (default: FormRegistration)

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment, with an optional
// .env file layered underneath for local development.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTSecret:           os.Getenv("AUTH_JWT_SECRET"),
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "form-registration"),
		SessionTTL:          getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTTL),
		PendingTTL:          getEnvDurationOrDefault("AUTH_PENDING_TTL", jwtx.DefaultPendingTTL),
		TOTPIssuer:          getEnvOrDefault("AUTH_TOTP_ISSUER", "FormRegistration"),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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
