package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Alert    AlertConfig
	Catalog  CatalogConfig
	Forecast ForecastConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN builds the PostgreSQL connection string, shared by pgxpool and the
// goose migration runner.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type LedgerConfig struct {
	// LockWait bounds how long a mutation waits for a per-record lock
	// before failing with a busy error.
	LockWait time.Duration
}

type AlertConfig struct {
	// DedupWindow is the rolling window within which an active alert of the
	// same (type, product, location) suppresses a new one.
	DedupWindow time.Duration
	// SweepInterval drives the periodic full re-evaluation.
	SweepInterval time.Duration
}

type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ForecastConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Supply Chain API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "supplychain"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			LockWait: getEnvDuration("LEDGER_LOCK_WAIT", 3*time.Second),
		},
		Alert: AlertConfig{
			DedupWindow:   getEnvDuration("ALERT_DEDUP_WINDOW", 24*time.Hour),
			SweepInterval: getEnvDuration("ALERT_SWEEP_INTERVAL", 6*time.Hour),
		},
		Catalog: CatalogConfig{
			BaseURL: getEnv("CATALOG_BASE_URL", "http://localhost:8081"),
			Timeout: getEnvDuration("CATALOG_TIMEOUT", 5*time.Second),
		},
		Forecast: ForecastConfig{
			BaseURL:  getEnv("FORECAST_BASE_URL", "http://localhost:8082"),
			Timeout:  getEnvDuration("FORECAST_TIMEOUT", 5*time.Second),
			CacheTTL: getEnvDuration("FORECAST_CACHE_TTL", 10*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks production-critical settings.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}
	if c.Ledger.LockWait <= 0 {
		return fmt.Errorf("LEDGER_LOCK_WAIT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
