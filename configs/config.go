package configs

import (
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Quotes   QuoteConfig
	Trading  TradingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration. An empty URL disables the quote
// cache entirely.
type RedisConfig struct {
	URL string
}

// QuoteConfig holds market-data provider configuration
type QuoteConfig struct {
	BaseURL  string
	APIToken string
	CacheTTL time.Duration
}

// TradingConfig holds ledger configuration
type TradingConfig struct {
	SeedCash     decimal.Decimal
	SnapshotSpec string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Quotes: QuoteConfig{
			BaseURL:  getEnv("QUOTE_API_URL", "https://cloud.iexapis.com/stable"),
			APIToken: getEnv("QUOTE_API_TOKEN", ""),
			CacheTTL: getDuration("QUOTE_CACHE_TTL", time.Minute),
		},
		Trading: TradingConfig{
			SeedCash:     getDecimal("SEED_CASH", decimal.NewFromInt(10000)),
			SnapshotSpec: getEnv("SNAPSHOT_CRON", "*/5 * * * *"),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
