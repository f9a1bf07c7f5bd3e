package config

import (
	"os"
	"strconv"
	"time"

	"kassa/internal/database"
	"kassa/internal/external"
	"kassa/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Performance monitoring
	PprofEnabled bool
	PprofPort    string

	Auth       AuthConfig
	Database   database.Config
	NATS       messaging.Config
	Webhook    external.WebhookConfig
	MarketData external.MarketDataConfig
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		// Performance monitoring
		PprofEnabled: getEnv("PPROF_ENABLED", "false") == "true",
		PprofPort:    getEnv("PPROF_PORT", "6060"),

		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-only-secret-change-me"),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		},

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "kassa"),
			Password:           getEnv("DB_PASSWORD", "kassa123"),
			DBName:             getEnv("DB_NAME", "kassa"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       os.Getenv("NATS_URL"), // empty disables publishing
			ClusterID: getEnv("NATS_CLUSTER_ID", "kassa"),
			ClientID:  getEnv("NATS_CLIENT_ID", "kassa-api"),
		},

		Webhook: external.WebhookConfig{
			URL:     os.Getenv("TICKET_WEBHOOK_URL"), // empty disables notifications
			Timeout: time.Duration(getEnvInt("WEBHOOK_TIMEOUT_SEC", 10)) * time.Second,
		},

		MarketData: external.MarketDataConfig{
			BaseURL: getEnv("MARKET_DATA_URL", "https://api.binance.com"),
			Timeout: time.Duration(getEnvInt("MARKET_DATA_TIMEOUT_SEC", 15)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or the fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
