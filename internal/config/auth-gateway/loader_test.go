package auth_gateway_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/auth?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 604800*time.Second, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Auth.RotateRefresh)
	assert.Equal(t, "refreshToken", cfg.Auth.CookieName)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, time.Second, cfg.Session.OpTimeout)
	assert.Equal(t, "https://go-auth.pages.dev", cfg.CORS.AllowedOrigin)
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("STORAGE_BACKEND", StorageMemory)
	t.Setenv("SESSION_BACKEND", SessionMemory)

	_, err := Load("")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  jwt_secret: file-secret
  rotate_refresh: true
storage:
  backend: memory
session:
  backend: memory
cors:
  allowed_origin: https://file.example
`), 0o600))
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://env.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.RotateRefresh)
	assert.Equal(t, "https://env.example", cfg.CORS.AllowedOrigin)
	assert.False(t, cfg.NeedsPostgres())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Auth:    Auth{JWTSecret: "s", AccessTTL: time.Hour, RefreshTTL: time.Hour},
			Storage: Storage{Backend: StorageMemory},
			Session: Session{Backend: SessionMemory},
		}
	}

	c := base()
	assert.NoError(t, c.Validate())

	c = base()
	c.Session.Backend = "etcd"
	assert.Error(t, c.Validate())

	c = base()
	c.Events.Enable = true
	assert.ErrorIs(t, c.Validate(), ErrEventsMemory)

	c = base()
	c.Session.Backend = SessionPostgres
	assert.ErrorIs(t, c.Validate(), ErrNoDSN)
}
