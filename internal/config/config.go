package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage, record and feedback backends.
const (
	BackendS3       = "s3"
	BackendLocal    = "local"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds the environment driven configuration for the relay service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"codedrop-relay"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"` // Options: "console" or "json"
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// HTTP Limits
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRequestBytes  int64         `env:"MAX_REQUEST_BYTES" envDefault:"16777216"` // base64 of 10 MiB plus JSON overhead
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`

	// AWS Shared Configuration
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// Blob Storage Backend Selection
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// S3 Storage Configuration
	S3Bucket         string `env:"BUCKET_NAME"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3PublicEndpoint string `env:"S3_PUBLIC_ENDPOINT"`
	S3UsePathStyle   bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	// Local Storage Configuration
	LocalStoragePath    string `env:"LOCAL_STORAGE_PATH" envDefault:"./relay-data"`
	LocalStorageBaseURL string `env:"LOCAL_STORAGE_BASE_URL" envDefault:"http://localhost:8080"`
	LocalSigningSecret  string `env:"LOCAL_SIGNING_SECRET"`

	// Metadata Record Store
	RecordStoreBackend string        `env:"RECORD_STORE_BACKEND" envDefault:"dynamodb"` // Options: "dynamodb", "redis" or "memory"
	TableName          string        `env:"TABLE_NAME"`
	DynamoDBEndpoint   string        `env:"DYNAMODB_ENDPOINT"`
	RedisURL           string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisKeyPrefix     string        `env:"REDIS_KEY_PREFIX" envDefault:"codedrop:file:"`
	RecordExpiryGrace  time.Duration `env:"RECORD_EXPIRY_GRACE" envDefault:"1h"`
	CodeIssueAttempts  int           `env:"CODE_ISSUE_ATTEMPTS" envDefault:"3"`

	// Feedback Store
	FeedbackStoreBackend string `env:"FEEDBACK_STORE_BACKEND" envDefault:"dynamodb"` // Options: "dynamodb", "postgres" or "memory"
	FeedbackTableName    string `env:"FEEDBACK_TABLE_NAME"`

	// Database (feedback store when FEEDBACK_STORE_BACKEND=postgres)
	DBPostgresqlWriteDSN string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBMaxIdleConns       int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns       int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Background sweeps for backends without native expiry
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"5m"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageBackend = normalizeBackend(c.StorageBackend, BackendS3)
	c.RecordStoreBackend = normalizeBackend(c.RecordStoreBackend, BackendDynamoDB)
	c.FeedbackStoreBackend = normalizeBackend(c.FeedbackStoreBackend, BackendDynamoDB)
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	c.S3Bucket = strings.TrimSpace(c.S3Bucket)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.S3PublicEndpoint = strings.TrimSpace(c.S3PublicEndpoint)
	c.AWSAccessKeyID = strings.TrimSpace(c.AWSAccessKeyID)
	c.AWSSecretAccessKey = strings.TrimSpace(c.AWSSecretAccessKey)
	c.TableName = strings.TrimSpace(c.TableName)
	c.FeedbackTableName = strings.TrimSpace(c.FeedbackTableName)
	c.DynamoDBEndpoint = strings.TrimSpace(c.DynamoDBEndpoint)
	c.LocalStorageBaseURL = strings.TrimSuffix(strings.TrimSpace(c.LocalStorageBaseURL), "/")

	if c.CodeIssueAttempts <= 0 {
		c.CodeIssueAttempts = 3
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = 16 << 20
	}
	if c.JanitorInterval <= 0 {
		c.JanitorInterval = 5 * time.Minute
	}
	if c.RecordExpiryGrace < 0 {
		c.RecordExpiryGrace = 0
	}
}

// Validate checks that every selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("BUCKET_NAME is required when STORAGE_BACKEND is s3")
		}
	case BackendLocal:
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			return fmt.Errorf("LOCAL_STORAGE_PATH is required when STORAGE_BACKEND is local")
		}
		if len(c.LocalSigningSecret) < 16 {
			return fmt.Errorf("LOCAL_SIGNING_SECRET must be at least 16 characters when STORAGE_BACKEND is local")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.RecordStoreBackend {
	case BackendDynamoDB:
		if c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required when RECORD_STORE_BACKEND is dynamodb")
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when RECORD_STORE_BACKEND is redis")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported RECORD_STORE_BACKEND %q", c.RecordStoreBackend)
	}

	switch c.FeedbackStoreBackend {
	case BackendDynamoDB:
		if c.FeedbackTableName == "" {
			return fmt.Errorf("FEEDBACK_TABLE_NAME is required when FEEDBACK_STORE_BACKEND is dynamodb")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.DBPostgresqlWriteDSN) == "" {
			return fmt.Errorf("DB_POSTGRESQL_WRITE_DSN is required when FEEDBACK_STORE_BACKEND is postgres")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported FEEDBACK_STORE_BACKEND %q", c.FeedbackStoreBackend)
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return c.StorageBackend == BackendLocal
}

// UsesAWS reports whether any configured backend talks to AWS.
func (c *Config) UsesAWS() bool {
	return c.StorageBackend == BackendS3 ||
		c.RecordStoreBackend == BackendDynamoDB ||
		c.FeedbackStoreBackend == BackendDynamoDB
}

// HasStaticCredentials reports whether explicit AWS keys were supplied.
func (c *Config) HasStaticCredentials() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

func normalizeBackend(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
