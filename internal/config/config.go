package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the agrisense data service.
// Environment variables are parsed from the AGRISENSE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage. DBDriver "auto" resolves to postgres when a DSN is set,
	// sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/agrisense.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Blob storage for plant imagery.
	BlobDriver string `envconfig:"BLOB_DRIVER" default:"fs"`
	BlobRoot   string `envconfig:"BLOB_ROOT" default:"./data/images"`

	// SystemAPIKey authorizes the privileged write path (alert/spectral
	// ingestion by analysis jobs). Empty disables that path.
	SystemAPIKey string `envconfig:"SYSTEM_API_KEY" default:""`

	// DevMode swaps the store-backed authorizer for the local mock.
	DevMode bool `envconfig:"DEV_MODE" default:"false"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"15"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults derives the storage driver when set to "auto" and rejects
// unsupported combinations.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}

	allowedBlob := map[string]bool{"fs": true, "memory": true}
	if !allowedBlob[c.BlobDriver] {
		return fmt.Errorf("unsupported BLOB_DRIVER: %s", c.BlobDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: AGRISENSE_HTTP_PORT, AGRISENSE_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("AGRISENSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Str("blob_driver", cfg.BlobDriver).
		Int("port", cfg.HTTPPort).
		Bool("dev_mode", cfg.DevMode).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config for tests: sqlite in a caller-provided path,
// memory blobs, mock auth.
func NewForTesting(sqlitePath string) *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		SQLitePath:                sqlitePath,
		BlobDriver:                "memory",
		SystemAPIKey:              "sk_system_test",
		DevMode:                   true,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
