// Package config provides centralized configuration management for the ETL.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendS3    = "s3"
	BackendLocal = "local"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	AWS       AWSConfig
	Warehouse WarehouseConfig
	Run       RunConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP trigger server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout must exceed RUN_TIMEOUT since runs are synchronous (default: 0, disabled)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds the wait for in-flight runs on shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// StorageConfig locates raw inputs and transformed outputs.
type StorageConfig struct {
	// Backend selects the object store: s3 or local (default: s3)
	Backend string `env:"STORAGE_BACKEND" default:"s3"`

	// Bucket is the S3 bucket holding both prefixes
	Bucket string `env:"S3_BUCKET_NAME" default:"prosper-etl-bucket"`

	RawPrefix         string `env:"S3_RAW_PREFIX" default:"raw/"`
	TransformedPrefix string `env:"S3_TRANSFORMED_PREFIX" default:"transformed/"`

	// PerRun nests each run's output under <transformed prefix><run id>/
	PerRun bool `env:"SINK_PER_RUN" default:"false"`

	// LocalDir is the root directory of the local backend (default: data)
	LocalDir string `env:"LOCAL_DATA_DIR" default:"data"`
}

// AWSConfig holds AWS client settings. Leaving the static credentials empty
// falls back to the SDK's default credential chain.
type AWSConfig struct {
	Region          string `env:"AWS_REGION" envAlt:"AWS_DEFAULT_REGION" default:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// EndpointURL targets an S3-compatible store such as MinIO
	EndpointURL string `env:"AWS_ENDPOINT_URL"`
}

// WarehouseConfig holds the analytical store connection and load settings.
type WarehouseConfig struct {
	// URL is the warehouse connection string, required by warehouse commands only
	URL string `env:"REDSHIFT_URL" envAlt:"DATABASE_URL"`

	// IAMRole is the role the warehouse assumes to read the transformed prefix
	IAMRole string `env:"IAM_ROLE_ARN"`

	MaxConns         int           `env:"WAREHOUSE_MAX_CONNS" default:"4"`
	StatementTimeout time.Duration `env:"WAREHOUSE_STATEMENT_TIMEOUT" default:"5m"`

	StagingSQLPath string `env:"STAGING_SQL_PATH" default:"sql/staging_tables.sql"`
	FinalSQLPath   string `env:"FINAL_SQL_PATH" default:"sql/final_tables.sql"`
}

// RunConfig controls pipeline run admission and scheduling.
type RunConfig struct {
	// MaxConcurrent is the maximum number of parallel runs (default: 1)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"1"`

	// MaxWaitTime is how long a trigger waits for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single run (default: 15m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"15m"`

	// ScheduleInterval triggers runs periodically when positive (default: 0, disabled)
	ScheduleInterval time.Duration `env:"RUN_SCHEDULE_INTERVAL" default:"0s"`
}

// RateLimitConfig holds rate limiting settings for the trigger API.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP API limit (default: 30)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"30"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SinkPrefix returns the transformed prefix for a run.
func (c *StorageConfig) SinkPrefix(runID string) string {
	if !c.PerRun || runID == "" {
		return c.TransformedPrefix
	}
	return JoinPrefix(c.TransformedPrefix, runID)
}

// JoinPrefix joins key prefix parts with single slashes and a trailing slash.
func JoinPrefix(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('/')
	}
	return b.String()
}
