package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Catalog sources.
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
)

// Cart storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (VELO_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (VELO_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"" usage:"Base URL for relative product image paths" flag:"image-base-url"`
	Catalog      CatalogConfig
	Storage      StorageConfig
	Session      SessionConfig
	Toast        ToastConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// CatalogConfig selects where products come from.
type CatalogConfig struct {
	Source string `default:"memory" usage:"Catalog source: memory or postgres"`
	// File replaces the embedded catalog. Plain or gzipped YAML.
	File  string `default:"" usage:"Catalog YAML file (.yaml or .yaml.gz)"`
	Watch bool   `default:"false" usage:"Reload the catalog file on change"`
	// Seed upserts the YAML catalog into PostgreSQL at startup.
	Seed bool `default:"false" usage:"Seed the postgres catalog on startup"`
}

// StorageConfig selects the cart storage medium.
type StorageConfig struct {
	Driver     string `default:"memory" usage:"Cart storage: memory, sqlite, redis or postgres"`
	Key        string `default:"velo-cart" usage:"Cart storage key prefix"`
	SQLitePath string `default:"data/velostore.db" usage:"SQLite file for the sqlite driver" env:"SQLITE_PATH" flag:"sqlite-path"`
	Redis      RedisConfig
}

// RedisConfig configures the redis driver.
type RedisConfig struct {
	Addr     string        `default:"localhost:6379" usage:"Redis address"`
	Password string        `default:"" usage:"Redis password"`
	DB       int           `default:"0" usage:"Redis database"`
	TTL      time.Duration `default:"720h" usage:"Idle cart expiry, refreshed on every write"`
}

// SessionConfig controls client sessions.
type SessionConfig struct {
	Cookie       string        `default:"velo_session" usage:"Session cookie name"`
	CookieMaxAge time.Duration `default:"720h" usage:"Session cookie lifetime"`
	SecureCookie bool          `default:"false" usage:"Mark the session cookie Secure"`
	IdleTimeout  time.Duration `default:"30m" usage:"Drop in-memory session state after this idle period"`
}

// ToastConfig controls notifications.
type ToastConfig struct {
	TTL time.Duration `default:"3s" usage:"Toast auto-dismiss delay"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "VELO",
		Files:     []string{"config.yaml", "/etc/velostore/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values and cross-option requirements.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceMemory, SourcePostgres:
	default:
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverRedis, DriverPostgres:
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.needsPostgres() && c.DatabaseURL == "" {
		return errors.New("database URL is required: set VELO_DATABASE_URL or DATABASE_URL")
	}
	if c.Catalog.Watch && c.Catalog.File == "" {
		return errors.New("catalog watch requires a catalog file")
	}
	return nil
}

func (c *Config) needsPostgres() bool {
	return c.Catalog.Source == SourcePostgres || c.Storage.Driver == DriverPostgres
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's VELO_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
