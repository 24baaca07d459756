package config

import (
	"fmt"
	"time"

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

// Auth modes.
const (
	AuthModeDev = "dev"
	AuthModeJWT = "jwt"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the configuration for the social service.
// Environment variables are parsed from the SOCIAL_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived when "auto": sqlite for local, postgres otherwise
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Authentication
	AuthMode  string `envconfig:"AUTH_MODE" default:"dev"`
	JWTSecret string `envconfig:"JWT_SECRET" default:""`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"telecom-social"`

	// Transient storage failures are retried this many times in total
	StorageMaxAttempts int  `envconfig:"STORAGE_MAX_ATTEMPTS" default:"3"`
	StorageRetryBaseMS int  `envconfig:"STORAGE_RETRY_BASE_MS" default:"20"`
	MaxMessageLength   int  `envconfig:"MAX_MESSAGE_LENGTH" default:"4000"`
	MetricsEnabled     bool `envconfig:"METRICS_ENABLED" default:"true"`

	// Health checks
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = DriverSQLite
	case "cloud-dev", "cloud":
		defaultDB = DriverPostgres
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	switch c.DBDriver {
	case DriverPostgres:
		// DSN is checked when the store is opened so tests can build a config without one.
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.AuthMode {
	case AuthModeDev:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=dev is not allowed in production")
		}
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE: %s", c.AuthMode)
	}

	if c.StorageMaxAttempts < 1 {
		c.StorageMaxAttempts = 1
	}
	return nil
}

// New creates a new Config by parsing environment variables
// prefixed with SOCIAL_, e.g. SOCIAL_HTTP_PORT, SOCIAL_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SOCIAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Str("auth_mode", cfg.AuthMode).
		Int("port", cfg.HTTPPort).
		Int("storage_max_attempts", cfg.StorageMaxAttempts).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  DriverSQLite,
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		AuthMode:                  AuthModeDev,
		JWTIssuer:                 "telecom-social",
		StorageMaxAttempts:        3,
		StorageRetryBaseMS:        1,
		MaxMessageLength:          4000,
		MetricsEnabled:            true,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
		BootstrapTimeoutSeconds:   5,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// RetryBase is the first backoff interval for transient storage failures.
func (c *Config) RetryBase() time.Duration {
	return time.Duration(c.StorageRetryBaseMS) * time.Millisecond
}
