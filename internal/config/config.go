// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package config loads service configuration from defaults, an
// optional YAML file, command-line flags and a pair of environment
// overrides, in that precedence order (later wins).
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/accountd/accountd/internal/token"
)

// Environment overrides. The database URL and the token secret are the
// two values deployments most often inject via the environment rather
// than a config file.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTokenSecret = "ACCOUNTD_TOKEN_SECRET"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Token    TokenConfig    `koanf:"token"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	// Addr is the API listen address.
	Addr string `koanf:"addr"`
	// ObservabilityAddr serves /metrics, /healthz and /readyz.
	ObservabilityAddr string `koanf:"observability_addr"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// TokenConfig configures the token service. The secret and TTL are
// externally supplied, never hardcoded.
type TokenConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Format is "json" or "text".
	Format string `koanf:"format"`
}

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ObservabilityAddr: "127.0.0.1:9100",
			ShutdownTimeout:   10 * time.Second,
		},
		Token: TokenConfig{
			TTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty (no config file);
// flags may be nil (no flag overrides).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if url := os.Getenv(EnvDatabaseURL); url != "" {
		cfg.Database.URL = url
	}
	if secret := os.Getenv(EnvTokenSecret); secret != "" {
		cfg.Token.Secret = secret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for a runnable server.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.addr is required")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("env", EnvDatabaseURL).
			Errorf("database.url is required")
	}
	if len(c.Token.Secret) < token.MinSecretLength {
		return oops.Code("CONFIG_INVALID").
			With("min_bytes", token.MinSecretLength).
			Errorf("token.secret must be at least %d bytes", token.MinSecretLength)
	}
	if c.Token.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token.ttl must be positive")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be json or text")
	}
	return nil
}
