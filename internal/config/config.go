// Package config loads Poseidon's runtime configuration from the environment.
//
// Variables use the POSEIDON_ prefix and a double underscore for nesting, so
// POSEIDON_SERVER__LISTEN_ADDR maps to server.listen_addr. A .env file in the
// working directory is loaded first when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "POSEIDON_"

type Config struct {
	Env      string         `koanf:"env" validate:"required,oneof=local development production test"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Auth     AuthConfig     `koanf:"auth" validate:"required"`
	Logging  LoggingConfig  `koanf:"logging" validate:"required"`
}

type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// AuthConfig holds session and password settings.
// SessionSecret signs session tokens and must be at least 32 bytes.
type AuthConfig struct {
	SessionSecret string        `koanf:"session_secret" validate:"required,min=32"`
	SessionTTL    time.Duration `koanf:"session_ttl" validate:"min=1m"`
	CookieName    string        `koanf:"cookie_name" validate:"required"`
	CookieSecure  bool          `koanf:"cookie_secure"`
	BcryptCost    int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
	LoginRate     float64       `koanf:"login_rate" validate:"gt=0"`
	LoginBurst    int           `koanf:"login_burst" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
	File   string `koanf:"file"`
}

// Default returns the configuration used when no variables are set.
// SessionSecret has no default and must always be supplied.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "/data/poseidon.db",
		},
		Auth: AuthConfig{
			SessionTTL: 8 * time.Hour,
			CookieName: "POSEIDON_SESSION",
			BcryptCost: 10,
			LoginRate:  1,
			LoginBurst: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads POSEIDON_* variables over the defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
