// Package config loads the storefront configuration.
//
// Values come from an optional YAML file and from environment variables
// prefixed with STOREFRONT_ (a `.env` file is picked up automatically).
// Environment variables win over the file. The result is validated so the
// process fails fast on missing or malformed settings.
//
// Nesting uses "." in variable names, e.g. STOREFRONT_SERVER.PORT maps to
// Config.Server.Port and STOREFRONT_DATABASE.HOST to Config.Database.Host.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix is stripped from every environment variable before mapping.
	EnvPrefix = "STOREFRONT_"

	// ServiceName tags logs, traces and email sender names.
	ServiceName = "storefront"
)

// Config is the root configuration object.
//
// Observability is optional; defaults are injected when it is absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Storefront    StorefrontConfig     `koanf:"storefront"`
	Storage       StorageConfig        `koanf:"storage"`
	Cache         CacheConfig          `koanf:"cache"`
	Jobs          JobsConfig           `koanf:"jobs"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds the runtime environment label ("local", "development",
// "production", ...).
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig holds PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig holds the Redis address ("host:port") shared by the cache and
// the job queue.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig configures Clerk.
//
// AdminRole is the Clerk organisation role that unlocks the admin API.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
	AdminRole string `koanf:"admin_role"`
}

// IntegrationConfig holds third-party API credentials.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from" validate:"omitempty,email"`
}

// StorefrontConfig holds the commercial rules of the shop. Money values are
// decimal strings so they survive env var round trips exactly.
type StorefrontConfig struct {
	StoreName             string        `koanf:"store_name"`
	Currency              string        `koanf:"currency" validate:"omitempty,len=3"`
	StandardShippingFee   string        `koanf:"standard_shipping_fee" validate:"omitempty,numeric"`
	ExpressShippingFee    string        `koanf:"express_shipping_fee" validate:"omitempty,numeric"`
	FreeShippingThreshold string        `koanf:"free_shipping_threshold" validate:"omitempty,numeric"`
	MaxLineQuantity       int           `koanf:"max_line_quantity" validate:"omitempty,min=1"`
	LowStockThreshold     int           `koanf:"low_stock_threshold" validate:"omitempty,min=0"`
	GuestCartTTL          time.Duration `koanf:"guest_cart_ttl"`
}

// StorageConfig controls where uploaded 3D assets are written and how they
// are addressed publicly.
type StorageConfig struct {
	AssetDir       string `koanf:"asset_dir"`
	PublicPrefix   string `koanf:"public_prefix"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes" validate:"omitempty,min=1"`
}

// CacheConfig controls the Redis read-through cache.
type CacheConfig struct {
	ProductTTL time.Duration `koanf:"product_ttl"`
}

// JobsConfig holds cron specs for scheduled background work.
type JobsConfig struct {
	CartCleanupSchedule string `koanf:"cart_cleanup_schedule"`
}

// RateLimitConfig throttles the write endpoints that are cheap to abuse
// (checkout and reviews), per client.
type RateLimitConfig struct {
	RequestsPerMinute float64       `koanf:"requests_per_minute" validate:"omitempty,gt=0"`
	Burst             int           `koanf:"burst" validate:"omitempty,min=1"`
	ExpiresIn         time.Duration `koanf:"expires_in"`
}

// LoadConfig reads, validates and defaults the configuration. path may be
// empty, in which case only the environment is consulted.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	if c.Auth.AdminRole == "" {
		c.Auth.AdminRole = "org:admin"
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "orders@resend.dev"
	}

	sf := &c.Storefront
	if sf.StoreName == "" {
		sf.StoreName = "Storefront"
	}
	if sf.Currency == "" {
		sf.Currency = "USD"
	}
	if sf.StandardShippingFee == "" {
		sf.StandardShippingFee = "5.00"
	}
	if sf.ExpressShippingFee == "" {
		sf.ExpressShippingFee = "15.00"
	}
	if sf.FreeShippingThreshold == "" {
		sf.FreeShippingThreshold = "100.00"
	}
	if sf.MaxLineQuantity == 0 {
		sf.MaxLineQuantity = 99
	}
	if sf.LowStockThreshold == 0 {
		sf.LowStockThreshold = 5
	}
	if sf.GuestCartTTL == 0 {
		sf.GuestCartTTL = 30 * 24 * time.Hour
	}

	if c.Storage.AssetDir == "" {
		c.Storage.AssetDir = "storage/assets"
	}
	if c.Storage.PublicPrefix == "" {
		c.Storage.PublicPrefix = "/assets"
	}
	if c.Storage.MaxUploadBytes == 0 {
		c.Storage.MaxUploadBytes = 50 << 20
	}

	if c.Cache.ProductTTL == 0 {
		c.Cache.ProductTTL = 5 * time.Minute
	}
	if c.Jobs.CartCleanupSchedule == "" {
		c.Jobs.CartCleanupSchedule = "@every 1h"
	}

	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.ExpiresIn == 0 {
		c.RateLimit.ExpiresIn = 3 * time.Minute
	}
}

// ShippingFees returns the parsed shipping fee table. Values were validated
// as numeric at load time.
func (s StorefrontConfig) ShippingFees() (standard, express, freeThreshold decimal.Decimal) {
	standard = decimal.RequireFromString(s.StandardShippingFee)
	express = decimal.RequireFromString(s.ExpressShippingFee)
	freeThreshold = decimal.RequireFromString(s.FreeShippingThreshold)
	return standard, express, freeThreshold
}

// Defaults returns a Config populated only with defaults, for tests and tools
// that never touch the environment.
func Defaults() *Config {
	c := &Config{
		Primary: Primary{Env: "test"},
	}
	c.applyDefaults()
	c.Observability.Environment = c.Primary.Env
	return c
}
