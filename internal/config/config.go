// Package config binds each binary's environment into a typed struct. A
// .env file in the working directory, when present, seeds variables that
// are not already set.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/joao-fontenele/mercosys/internal/storage"
)

type Database struct {
	URL             string        `envconfig:"POSTGRES_URL" required:"true"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

func (d Database) Options() storage.Options {
	return storage.Options{
		DSN:             d.URL,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

type API struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	ServiceVersion  string        `envconfig:"SERVICE_VERSION" default:"0.1.0"`
	TracingEnabled  bool          `envconfig:"TRACING_ENABLED" default:"true"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	Database
}

type Gateway struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ServiceVersion  string        `envconfig:"SERVICE_VERSION" default:"0.1.0"`
	TracingEnabled  bool          `envconfig:"TRACING_ENABLED" default:"true"`
	APIServiceURL   string        `envconfig:"API_SERVICE_URL" required:"true"`
	JWTSecret       string        `envconfig:"AUTH_JWT_SECRET" required:"true"`
	JWTIssuer       string        `envconfig:"AUTH_JWT_ISSUER"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type Migrate struct {
	DatabaseURL    string `envconfig:"POSTGRES_URL" required:"true"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
}

type Client struct {
	APIURL  string        `envconfig:"MERCOSYS_API_URL" default:"http://localhost:8080"`
	Token   string        `envconfig:"MERCOSYS_TOKEN"`
	Timeout time.Duration `envconfig:"MERCOSYS_TIMEOUT" default:"10s"`
}

func LoadAPI() (*API, error) {
	cfg := &API{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadGateway() (*Gateway, error) {
	cfg := &Gateway{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	cfg.APIServiceURL = strings.TrimRight(cfg.APIServiceURL, "/")
	return cfg, nil
}

func LoadMigrate() (*Migrate, error) {
	cfg := &Migrate{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(cfg any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return envconfig.Process("", cfg)
}
