// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host    string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port    string `env:"APP_PORT" envDefault:"8080"`
	Env     string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	SiteURL string `env:"SITE_URL" envDefault:"https://flik.cl"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"flik"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"flik"`

	// Connection pool
	DBMaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string        `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string        `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	ViewCacheTTL   time.Duration `env:"VIEW_CACHE_TTL" envDefault:"5m"`

	// Admin access. Loopback requests addressed to AdminHosts are let through;
	// anything else needs HTTP basic auth matching AdminPasswordHash.
	// Production refuses to start without a hash.
	AdminHosts        []string `env:"ADMIN_HOSTS" envDefault:"localhost" envSeparator:","`
	AdminUser         string   `env:"ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string   `env:"ADMIN_PASSWORD_HASH"`

	// S3-compatible object storage for uploaded images (optional)
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// PublicDir holds the static images optimize-image may rewrite.
	PublicDir string `env:"PUBLIC_DIR" envDefault:"public"`

	// Comment notifications via Resend (optional)
	ResendAPIKey string `env:"RESEND_API_KEY"`
	NotifyFrom   string `env:"NOTIFY_FROM" envDefault:"Flik <hola@flik.cl>"`
	NotifyTo     string `env:"NOTIFY_TO"`

	// RateLimit is the number of public API writes allowed per client per minute.
	RateLimit int `env:"RATE_LIMIT" envDefault:"30"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminPasswordHash == "" {
			return nil, errors.New("ADMIN_PASSWORD_HASH must be set in production")
		}
	}
	if cfg.RateLimit < 1 {
		return nil, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}
	if cfg.DBMaxOpenConns < 1 {
		return nil, fmt.Errorf("POSTGRES_MAX_OPEN_CONNS must be positive, got %d", cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns < 0 || cfg.DBMaxIdleConns > cfg.DBMaxOpenConns {
		return nil, fmt.Errorf("POSTGRES_MAX_IDLE_CONNS must be between 0 and %d, got %d", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
