// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// SourceKind selects where raw listings are ingested from.
type SourceKind string

const (
	SourceCSV       SourceKind = "csv"
	SourcePostgres  SourceKind = "postgres"
	SourceSnowflake SourceKind = "snowflake"
)

// Config represents the application configuration.
type Config struct {
	// Ingestion
	Source    SourceKind
	CSVPath   string
	Postgres  *PostgresConfig
	Snowflake *SnowflakeConfig

	// Cleaning rules; empty path means the built-in defaults
	RulesPath string

	// Pipeline behavior
	CoercionPolicy string // "abort" or "skip"

	// Analysis settings
	MinGroupFrequency float64
	TopModels         int

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		Source:            SourceKind(getEnv("AUTOS_SOURCE", string(SourceCSV))),
		CSVPath:           getEnv("AUTOS_CSV_PATH", "autos.csv"),
		RulesPath:         getEnv("AUTOS_RULES_PATH", ""),
		CoercionPolicy:    getEnv("AUTOS_COERCION_POLICY", "abort"),
		MinGroupFrequency: getEnvAsFloat("AUTOS_MIN_GROUP_FREQUENCY", 0.03),
		TopModels:         getEnvAsInt("AUTOS_TOP_MODELS", 10),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	// Load source configuration only for the selected source
	switch cfg.Source {
	case SourceCSV:
		// Nothing further to load
	case SourcePostgres:
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	case SourceSnowflake:
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Source)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Source == SourceCSV && c.CSVPath == "" {
		return errors.New("CSV path is required for the csv source")
	}

	if c.CoercionPolicy != "abort" && c.CoercionPolicy != "skip" {
		return fmt.Errorf("coercion policy must be \"abort\" or \"skip\", got %q", c.CoercionPolicy)
	}

	if c.MinGroupFrequency < 0 || c.MinGroupFrequency > 1 {
		return errors.New("minimum group frequency must be within [0, 1]")
	}

	if c.TopModels <= 0 {
		return errors.New("top models count must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
