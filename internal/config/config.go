package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	Store       StoreConfig
	RateLimit   RateLimitConfig
}

// StoreConfig holds member store configuration
type StoreConfig struct {
	Type        string // "dynamodb", "sqlite" or "memory"
	TableName   string
	Region      string
	Endpoint    string // DynamoDB Local or other compatible endpoint
	MaxAttempts int
	SQLitePath  string
	PageSize    int // scan page size for the sqlite and memory stores
}

// RateLimitConfig holds local server rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_TYPE", StoreDynamoDB)
	viper.SetDefault("DYNAMODB_TABLE", "otf-members")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("STORE_MAX_ATTEMPTS", 1)
	viper.SetDefault("SQLITE_PATH", "./data/members.db")
	viper.SetDefault("STORE_PAGE_SIZE", 100)
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		Store: StoreConfig{
			Type:        viper.GetString("STORE_TYPE"),
			TableName:   viper.GetString("DYNAMODB_TABLE"),
			Region:      viper.GetString("AWS_REGION"),
			Endpoint:    viper.GetString("DYNAMODB_ENDPOINT"),
			MaxAttempts: viper.GetInt("STORE_MAX_ATTEMPTS"),
			SQLitePath:  viper.GetString("SQLITE_PATH"),
			PageSize:    viper.GetInt("STORE_PAGE_SIZE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the stores cannot work with
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreDynamoDB:
		if c.Store.TableName == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
		}
		if c.Store.Region == "" {
			return fmt.Errorf("AWS_REGION is required for the dynamodb store")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_TYPE %q: use dynamodb, sqlite or memory", c.Store.Type)
	}

	if c.Store.MaxAttempts < 1 {
		return fmt.Errorf("STORE_MAX_ATTEMPTS must be at least 1, got %d", c.Store.MaxAttempts)
	}
	if c.Store.PageSize < 1 {
		return fmt.Errorf("STORE_PAGE_SIZE must be at least 1, got %d", c.Store.PageSize)
	}

	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
