// Package config loads the lead service configuration from environment
// variables, applies defaults and validates everything on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Auth     AuthConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Export   ExportConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"3m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout also bounds the wait for in-flight imports.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout applies to every route except import.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. DB_URL is accepted too.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RunMigrations applies embedded migrations at startup.
	RunMigrations bool `env:"DB_RUN_MIGRATIONS" default:"true"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxFileSize caps the multipart upload body in bytes (default: 1MB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"1048576"`

	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"5"`
	MaxWaitTime   time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"10s"`
	Timeout       time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`

	// MaxRows may lower, never raise, the 200 row ceiling.
	MaxRows int `env:"IMPORT_MAX_ROWS" default:"200"`
}

// RateLimitConfig holds per-caller rate limiting for mutation routes.
type RateLimitConfig struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED" default:"true"`
	Requests int           `env:"RATE_LIMIT_REQUESTS" default:"60"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" default:"1m"`
}

// AuthConfig holds session and ownership settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. At least 32 bytes.
	JWTSecret string `env:"AUTH_JWT_SECRET" envAlt:"JWT_SECRET" required:"true"`

	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" default:"24h"`
	CookieName string        `env:"AUTH_COOKIE_NAME" default:"leads_session"`

	// CookieSecure sets the Secure flag; disable only for local http.
	CookieSecure bool `env:"AUTH_COOKIE_SECURE" default:"true"`

	DemoEnabled bool   `env:"AUTH_DEMO_ENABLED" default:"false"`
	DemoUserID  string `env:"AUTH_DEMO_USER_ID" default:"00000000-0000-0000-0000-000000000001"`
	DemoEmail   string `env:"AUTH_DEMO_EMAIL" default:"demo@example.com"`

	// EnforceOwnership limits edits and deletes to the owning agent.
	EnforceOwnership bool `env:"AUTH_ENFORCE_OWNERSHIP" default:"true"`
}

// SecurityConfig holds proxy trust settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs or IPs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ExportConfig holds S3 archive settings. An empty bucket disables archiving.
type ExportConfig struct {
	Bucket     string        `env:"EXPORT_S3_BUCKET"`
	Region     string        `env:"EXPORT_S3_REGION" default:"us-east-1"`
	Endpoint   string        `env:"EXPORT_S3_ENDPOINT"`
	AccessKey  string        `env:"EXPORT_S3_ACCESS_KEY"`
	SecretKey  string        `env:"EXPORT_S3_SECRET_KEY"`
	PathStyle  bool          `env:"EXPORT_S3_PATH_STYLE" default:"false"`
	Prefix     string        `env:"EXPORT_S3_PREFIX" default:"leads"`
	PresignTTL time.Duration `env:"EXPORT_PRESIGN_TTL" default:"15m"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ArchiveEnabled reports whether export archiving is configured.
func (c *ExportConfig) ArchiveEnabled() bool {
	return c.Bucket != ""
}
