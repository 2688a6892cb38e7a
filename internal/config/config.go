package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"hypoavg/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Storage   StorageConfig
	Schema    SchemaConfig
	Server    ServerConfig
	Aggregate AggregateConfig
	LogLevel  string
}

// StorageConfig holds the location of the raw-observation store
type StorageConfig struct {
	DataDir string
}

// SchemaConfig selects where canonical evidence schemas are read from
type SchemaConfig struct {
	Dir         string
	DatabaseURL string
}

// UsePostgres reports whether schemas come from Postgres instead of files
func (s SchemaConfig) UsePostgres() bool {
	return s.DatabaseURL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
}

// AggregateConfig holds recompute settings
type AggregateConfig struct {
	Workers      int
	WatchDataDir bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	shutdown, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("AGGREGATE_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Storage: StorageConfig{
			DataDir: getEnvOrDefault("DATA_DIR", "data"),
		},
		Schema: SchemaConfig{
			Dir:         getEnvOrDefault("SCHEMA_DIR", "schemas"),
			DatabaseURL: os.Getenv("SCHEMA_DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "release"),
			MetricsEnabled:  getEnvBoolOrDefault("METRICS_ENABLED", true),
			ShutdownTimeout: shutdown,
		},
		Aggregate: AggregateConfig{
			Workers:      workers,
			WatchDataDir: getEnvBoolOrDefault("WATCH_DATA_DIR", false),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Storage.DataDir == "" {
		return errors.ConfigInvalid("DATA_DIR must not be empty")
	}
	if !config.Schema.UsePostgres() && config.Schema.Dir == "" {
		return errors.ConfigInvalid("SCHEMA_DIR must be set when SCHEMA_DATABASE_URL is empty")
	}
	if config.Aggregate.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("AGGREGATE_WORKERS must be positive, got %d", config.Aggregate.Workers))
	}
	if config.Server.ShutdownTimeout < 0 {
		return errors.ConfigInvalid("SHUTDOWN_TIMEOUT must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.WithCodef(errors.CodeConfigInvalid, err, "%s is not an integer", key)
	}
	return intValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WithCodef(errors.CodeConfigInvalid, err, "%s is not a duration", key)
	}
	return duration, nil
}
