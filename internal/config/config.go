// Package config provides application configuration management.
// It loads settings from environment variables (optionally via a .env file)
// and validates them before the server or CLI starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
	"github.com/permcatalog/edu-catalog/internal/r2client"
)

// Dataset source kinds.
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceR2     = "r2"
)

// DefaultDatastarURL is the datastar client bundle the page loads.
const DefaultDatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Dataset Configuration
	DataSource     string        // file, sqlite or r2
	DataPath       string        // dataset file or SQLite catalog path
	DataCharset    string        // legacy charset of the dataset file (empty = UTF-8)
	ReloadInterval time.Duration // change-detection poll interval (0 = load once)

	// Presentation
	DefaultRegion    string
	PinnedRegions    []string
	VocationalPolicy catalog.VocationalPolicy
	DatastarURL      string

	// R2 Configuration (DataSource == "r2")
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2ObjectKey       string
	R2Endpoint        string // overrides the account endpoint (S3-compatible stores)

	// Sentry Configuration (Better Stack Errors)
	SentryToken       string
	SentryHost        string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Logs
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated reads configuration without validating it. The CLI uses it
// because most subcommands need only a subset of the settings.
func LoadUnvalidated() (*Config, error) {
	// Ignore a missing .env file
	_ = godotenv.Load()

	policy, err := catalog.ParseVocationalPolicy(getEnv(EnvVocationalLabel, string(catalog.VocationalAuto)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvVocationalLabel, err)
	}

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		DataSource:     strings.ToLower(getEnv(EnvDataSource, SourceFile)),
		DataPath:       getEnv(EnvDataPath, filepath.Join("data", "catalog.json")),
		DataCharset:    getEnv(EnvDataCharset, ""),
		ReloadInterval: getDurationEnv(EnvReloadInterval, time.Minute),

		DefaultRegion:    getEnv(EnvDefaultRegion, catalog.DefaultRegion),
		PinnedRegions:    getListEnv(EnvPinnedRegions),
		VocationalPolicy: policy,
		DatastarURL:      getEnv(EnvDatastarURL, DefaultDatastarURL),

		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2ObjectKey:       getEnv(EnvR2ObjectKey, "catalog/catalog.db.zst"),
		R2Endpoint:        getEnv(EnvR2Endpoint, ""),

		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, domerrors.NewValidationError(EnvPort, fmt.Sprintf("must be a port number, got %q", c.Port)))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, domerrors.NewValidationError(EnvShutdownTimeout, fmt.Sprintf("must be positive, got %v", c.ShutdownTimeout)))
	}
	if c.ReloadInterval < 0 {
		errs = append(errs, domerrors.NewValidationError(EnvReloadInterval, fmt.Sprintf("cannot be negative, got %v", c.ReloadInterval)))
	}

	switch c.DataSource {
	case SourceFile, SourceSQLite:
		if c.DataPath == "" {
			errs = append(errs, domerrors.NewValidationError(EnvDataPath, fmt.Sprintf("required for the %s source", c.DataSource)))
		}
	case SourceR2:
		if !c.R2Configured() {
			errs = append(errs, domerrors.NewValidationError(EnvDataSource, fmt.Sprintf("the r2 source requires %s, %s, %s and %s",
				EnvR2AccountID, EnvR2AccessKeyID, EnvR2SecretAccessKey, EnvR2BucketName)))
		}
		if c.R2ObjectKey == "" {
			errs = append(errs, domerrors.NewValidationError(EnvR2ObjectKey, "required for the r2 source"))
		}
	default:
		errs = append(errs, domerrors.NewValidationError(EnvDataSource, fmt.Sprintf("must be file, sqlite or r2, got %q", c.DataSource)))
	}

	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, domerrors.NewValidationError(EnvSentryHost, "required when "+EnvSentryToken+" is set"))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, domerrors.NewValidationError(EnvSentrySampleRate, fmt.Sprintf("must be within [0, 1], got %v", c.SentrySampleRate)))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, domerrors.NewValidationError(EnvMetricsPassword, "required when metrics auth is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// R2Configured reports whether R2 credentials are complete.
func (c *Config) R2Configured() bool {
	return (c.R2AccountID != "" || c.R2Endpoint != "") && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// R2 returns the object storage client settings. An explicit endpoint wins
// over the one derived from the account ID.
func (c *Config) R2() r2client.Config {
	endpoint := c.R2Endpoint
	if endpoint == "" && c.R2AccountID != "" {
		endpoint = r2client.AccountEndpoint(c.R2AccountID)
	}
	return r2client.Config{
		Endpoint:    endpoint,
		AccessKeyID: c.R2AccessKeyID,
		SecretKey:   c.R2SecretAccessKey,
		BucketName:  c.R2BucketName,
	}
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blank items.
func getListEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
