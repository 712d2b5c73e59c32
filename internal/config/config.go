// Package config loads the service configuration from environment
// variables with defaults, and validates it on startup.
package config

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Pricing  PricingConfig
	Exchange ExchangeConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including waiting for
	// in-flight imports
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-import requests
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. DB_URL is accepted too.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies the embedded schema on startup
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// ImportConfig holds spreadsheet import settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the number of imports processed at once
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for an import slot
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Workers bounds row processing per import; 0 uses GOMAXPROCS
	Workers int `env:"IMPORT_WORKERS" default:"0"`

	// BatchTTL is how long a preview can be confirmed
	BatchTTL time.Duration `env:"IMPORT_BATCH_TTL" default:"30m"`

	// JanitorInterval is how often expired previews are purged
	JanitorInterval time.Duration `env:"IMPORT_JANITOR_INTERVAL" default:"1m"`

	// StrictPricing rejects rows that would get the placeholder price
	StrictPricing bool `env:"IMPORT_STRICT_PRICING" default:"false"`

	// CSVCharset decodes CSV uploads from a legacy encoding
	CSVCharset string `env:"IMPORT_CSV_CHARSET"`
}

// PricingConfig holds rates used when a vendor has no profile.
type PricingConfig struct {
	GoldRatePerGram     decimal.Decimal `env:"PRICING_GOLD_RATE_PER_GRAM" default:"7000"`
	MakingChargePerGram decimal.Decimal `env:"PRICING_MAKING_CHARGE_PER_GRAM" default:"500"`
}

// ExchangeConfig holds INR to USD rate settings.
type ExchangeConfig struct {
	URL            string        `env:"FX_URL" default:"https://open.er-api.com/v6/latest/INR"`
	CacheTTL       time.Duration `env:"FX_CACHE_TTL" default:"1h"`
	Timeout        time.Duration `env:"FX_TIMEOUT" default:"10s"`
	RequestsPerMin int           `env:"FX_REQUESTS_PER_MINUTE" default:"30"`

	// FixedRate overrides the provider when set (development, tests)
	FixedRate decimal.Decimal `env:"FX_FIXED_RATE"`

	// RedisURL enables a cache shared between replicas
	RedisURL string `env:"FX_REDIS_URL" envAlt:"REDIS_URL"`
	RedisKey string `env:"FX_REDIS_KEY" default:"fx:inr:usd"`
}

// RateLimitConfig holds per-IP HTTP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to read endpoints
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportLimit applies to preview and confirm
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are honoured
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey rejects requests without a valid key
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
