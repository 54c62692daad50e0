// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// setRequired injects the two values without which no configuration
// validates.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvDatabaseURL, "postgres://localhost:5432/accountd")
	t.Setenv(config.EnvTokenSecret, testSecret)
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accountd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.ObservabilityAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Token.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_File(t *testing.T) {
	setRequired(t)
	path := writeConfigFile(t, `
server:
  addr: ":9090"
token:
  ttl: 1h
log:
  format: text
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.Token.TTL)
	assert.Equal(t, "text", cfg.Log.Format)
	// Untouched keys keep their defaults.
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.ObservabilityAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	setRequired(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	setRequired(t)
	path := writeConfigFile(t, `
server:
  addr: ":9090"
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", ":8080", "")
	require.NoError(t, flags.Set("server.addr", ":7070"))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setRequired(t)
	path := writeConfigFile(t, `
database:
  url: postgres://file-host/accountd
token:
  secret: file-secret-0123456789abcdef
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/accountd", cfg.Database.URL)
	assert.Equal(t, testSecret, cfg.Token.Secret)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Database.URL = "postgres://localhost:5432/accountd"
		cfg.Token.Secret = testSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(*config.Config) {},
		},
		{
			name:    "missing addr",
			mutate:  func(c *config.Config) { c.Server.Addr = "" },
			wantErr: "server.addr",
		},
		{
			name:    "missing database url",
			mutate:  func(c *config.Config) { c.Database.URL = "" },
			wantErr: "database.url",
		},
		{
			name:    "short token secret",
			mutate:  func(c *config.Config) { c.Token.Secret = "short" },
			wantErr: "token.secret",
		},
		{
			name:    "non-positive ttl",
			mutate:  func(c *config.Config) { c.Token.TTL = 0 },
			wantErr: "token.ttl",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *config.Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
