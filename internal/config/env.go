package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "CATALOG_PORT"
	EnvLogLevel        = "CATALOG_LOG_LEVEL"
	EnvShutdownTimeout = "CATALOG_SHUTDOWN_TIMEOUT"

	// Dataset
	EnvDataSource     = "CATALOG_DATA_SOURCE"
	EnvDataPath       = "CATALOG_DATA_PATH"
	EnvDataCharset    = "CATALOG_DATA_CHARSET"
	EnvReloadInterval = "CATALOG_RELOAD_INTERVAL"

	// Presentation
	EnvDefaultRegion   = "CATALOG_DEFAULT_REGION"
	EnvPinnedRegions   = "CATALOG_PINNED_REGIONS"
	EnvVocationalLabel = "CATALOG_VOCATIONAL_LABEL"
	EnvDatastarURL     = "CATALOG_DATASTAR_URL"

	// R2 dataset source
	EnvR2AccountID       = "CATALOG_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "CATALOG_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "CATALOG_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "CATALOG_R2_BUCKET_NAME"
	EnvR2ObjectKey       = "CATALOG_R2_OBJECT_KEY"
	EnvR2Endpoint        = "CATALOG_R2_ENDPOINT"

	// Sentry (Better Stack Errors)
	EnvSentryToken       = "CATALOG_SENTRY_TOKEN"
	EnvSentryHost        = "CATALOG_SENTRY_HOST"
	EnvSentryEnvironment = "CATALOG_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "CATALOG_SENTRY_SAMPLE_RATE"

	// Better Stack logs
	EnvBetterStackToken    = "CATALOG_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "CATALOG_BETTERSTACK_ENDPOINT"

	// Metrics auth
	EnvMetricsAuthEnabled = "CATALOG_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "CATALOG_METRICS_USERNAME"
	EnvMetricsPassword    = "CATALOG_METRICS_PASSWORD"
)
