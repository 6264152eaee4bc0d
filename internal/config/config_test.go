package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, GracefulShutdown, cfg.ShutdownTimeout)
	assert.Equal(t, SourceFile, cfg.DataSource)
	assert.Equal(t, time.Minute, cfg.ReloadInterval)
	assert.Equal(t, catalog.DefaultRegion, cfg.DefaultRegion)
	assert.Equal(t, catalog.VocationalAuto, cfg.VocationalPolicy)
	assert.Equal(t, DefaultDatastarURL, cfg.DatastarURL)
	assert.Nil(t, cfg.PinnedRegions)
	assert.False(t, cfg.MetricsAuthEnabled)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvReloadInterval, "0s")
	t.Setenv(EnvPinnedRegions, "Пермский край, ,Алтайский край")
	t.Setenv(EnvVocationalLabel, "always")
	t.Setenv(EnvDataSource, "SQLite")
	t.Setenv(EnvDataPath, "/var/lib/catalog.db")
	t.Setenv(EnvMetricsAuthEnabled, "true")
	t.Setenv(EnvMetricsPassword, "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Zero(t, cfg.ReloadInterval)
	assert.Equal(t, []string{"Пермский край", "Алтайский край"}, cfg.PinnedRegions)
	assert.Equal(t, catalog.VocationalAlways, cfg.VocationalPolicy)
	assert.Equal(t, SourceSQLite, cfg.DataSource)
	assert.Equal(t, "/var/lib/catalog.db", cfg.DataPath)
	assert.True(t, cfg.MetricsAuthEnabled)
}

func TestLoad_BadVocationalPolicy(t *testing.T) {
	t.Setenv(EnvVocationalLabel, "sometimes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvVocationalLabel)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		return &Config{
			Port:             "10000",
			ShutdownTimeout:  time.Second,
			DataSource:       SourceFile,
			DataPath:         "data/catalog.json",
			SentrySampleRate: 1,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "http" }, errContains: []string{EnvPort}},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, errContains: []string{EnvPort}},
		{name: "negative reload", mutate: func(c *Config) { c.ReloadInterval = -time.Second }, errContains: []string{EnvReloadInterval}},
		{name: "unknown source", mutate: func(c *Config) { c.DataSource = "ftp" }, errContains: []string{EnvDataSource}},
		{name: "missing path", mutate: func(c *Config) { c.DataPath = "" }, errContains: []string{EnvDataPath}},
		{
			name:        "incomplete r2",
			mutate:      func(c *Config) { c.DataSource = SourceR2; c.R2AccountID = "acc" },
			errContains: []string{EnvR2BucketName, EnvR2ObjectKey},
		},
		{name: "sentry without host", mutate: func(c *Config) { c.SentryToken = "t" }, errContains: []string{EnvSentryHost}},
		{name: "metrics auth without password", mutate: func(c *Config) { c.MetricsAuthEnabled = true }, errContains: []string{EnvMetricsPassword}},
		{
			name:        "joins every problem",
			mutate:      func(c *Config) { c.Port = ""; c.ShutdownTimeout = 0; c.SentrySampleRate = 2 },
			errContains: []string{EnvPort, EnvShutdownTimeout, EnvSentrySampleRate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.errContains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.errContains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	t.Parallel()
	cfg := &Config{Port: "http", ShutdownTimeout: time.Second, DataSource: SourceFile}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, domerrors.IsInvalidInput(err))

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *domerrors.ValidationError
		require.ErrorAs(t, e, &ve)
		fields = append(fields, ve.Field)
	}
	assert.Equal(t, []string{EnvPort, EnvDataPath}, fields)
}

func TestR2Configured(t *testing.T) {
	t.Parallel()
	cfg := &Config{R2AccountID: "a", R2AccessKeyID: "b", R2SecretAccessKey: "c"}
	assert.False(t, cfg.R2Configured())
	cfg.R2BucketName = "d"
	assert.True(t, cfg.R2Configured())
}

func TestR2ClientConfig(t *testing.T) {
	t.Parallel()
	cfg := &Config{R2AccountID: "acct", R2AccessKeyID: "key", R2SecretAccessKey: "secret", R2BucketName: "bucket"}
	r2 := cfg.R2()
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", r2.Endpoint)
	assert.Equal(t, "bucket", r2.BucketName)
	require.NoError(t, r2.Validate())

	// An explicit endpoint replaces the account one, e.g. for MinIO.
	cfg = &Config{R2Endpoint: "http://localhost:9000", R2AccessKeyID: "k", R2SecretAccessKey: "s", R2BucketName: "b"}
	assert.True(t, cfg.R2Configured())
	assert.Equal(t, "http://localhost:9000", cfg.R2().Endpoint)
}
