package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// PriceLabs
	APIKey  string
	BaseURL string

	// Adjustment engine
	AdjustmentPercentage float64 // fraction in (0, 1)
	ChunkSize            int
	ChunkDelay           time.Duration
	RetryDelay           time.Duration

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		APIKey:               getEnv("PRICELABS_API_KEY", ""),
		BaseURL:              getEnv("API_BASE_URL", "https://api.pricelabs.co/v1"),
		AdjustmentPercentage: getEnvFloat("ADJUSTMENT_PERCENTAGE", 0.05),
		ChunkSize:            getEnvInt("CHUNK_SIZE", 20),
		ChunkDelay:           getEnvDuration("CHUNK_DELAY", 2*time.Second),
		RetryDelay:           getEnvDuration("RETRY_DELAY", time.Second),
		StorageType:          getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:           getEnv("SQLITE_PATH", "./adjustments.db"),
		PostgresURL:          getEnv("POSTGRES_URL", ""),
		APIPort:              getEnv("API_PORT", "8080"),
		APIHost:              getEnv("API_HOST", "localhost"),
		APIEndpoint:          getEnv("API_ENDPOINT", "http://localhost:8080"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Field: "PRICELABS_API_KEY", Message: "PriceLabs API key is required"}
	}
	if c.AdjustmentPercentage <= 0 || c.AdjustmentPercentage >= 1 {
		return &ConfigError{Field: "ADJUSTMENT_PERCENTAGE", Message: "must be a fraction in (0, 1)"}
	}
	if c.ChunkSize < 1 {
		return &ConfigError{Field: "CHUNK_SIZE", Message: "must be >= 1"}
	}
	if c.ChunkDelay < 0 {
		return &ConfigError{Field: "CHUNK_DELAY", Message: "must be >= 0"}
	}
	if c.RetryDelay < 0 {
		return &ConfigError{Field: "RETRY_DELAY", Message: "must be >= 0"}
	}
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
