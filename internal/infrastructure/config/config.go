package config

import (
	"crypto/rand"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr           string        `env:"SLOPE_ADDR" envDefault:":8080" validate:"required"`
	BackendURL     string        `env:"SLOPE_BACKEND_URL" envDefault:"http://localhost:8000" validate:"required,url"`
	RequestTimeout time.Duration `env:"SLOPE_REQUEST_TIMEOUT" envDefault:"90s" validate:"gt=0"`

	StorageDriver string `env:"SLOPE_STORAGE_DRIVER" envDefault:"memory" validate:"oneof=memory sqlite postgres"`
	StoragePath   string `env:"SLOPE_STORAGE_PATH" envDefault:"slopeselector.db" validate:"required_if=StorageDriver sqlite"`
	DatabaseURL   string `env:"DATABASE_URL" validate:"required_if=StorageDriver postgres"`

	CookieSecret    string        `env:"SLOPE_COOKIE_SECRET"`
	CookieSecure    bool          `env:"SLOPE_COOKIE_SECURE"`
	SessionIdleTTL  time.Duration `env:"SLOPE_SESSION_IDLE_TTL" envDefault:"24h" validate:"gt=0"`
	AllowOrigins    string        `env:"SLOPE_ALLOW_ORIGINS" envDefault:"*"`
	LogLevel        string        `env:"SLOPE_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	EnableTracing   bool          `env:"ENABLE_TRACING"`
	TracingEndpoint string        `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// CookieKey returns the cookie signing key. When none is configured a random one is
// generated and generated is true; cookies then stop validating on restart.
func (c Config) CookieKey() (key []byte, generated bool, err error) {
	if c.CookieSecret != "" {
		return []byte(c.CookieSecret), false, nil
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, errors.Wrap(err, "generate cookie key")
	}
	return key, true, nil
}
