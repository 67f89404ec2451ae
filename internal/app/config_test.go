package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Address)
	require.Equal(t, "universe", cfg.Auth.JWT.Issuer)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 48, cfg.Auth.Session.RefreshLength)
	require.Equal(t, 6, cfg.Auth.OTP.Digits)
	require.Equal(t, 10*time.Minute, cfg.Auth.OTP.TTL)
	require.Equal(t, time.Hour, cfg.Auth.Reset.TTL)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
	require.Equal(t, "http://localhost:3000", cfg.App.BaseURL)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9090
  log_level: debug
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5432
    database: universe
    username: svc
    password: secret
auth:
  jwt:
    secret: file-secret
    access_token_ttl: 5m
  otp:
    digits: 4
cache:
  redis:
    enabled: true
    address: redis.internal:6379
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.Equal(t, "svc", cfg.Database.Postgres.Username)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 5*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 4, cfg.Auth.OTP.Digits)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.internal:6379", cfg.Cache.Redis.Address)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("UNIVERSE_SERVER_PORT", "7070")
	t.Setenv("UNIVERSE_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}
