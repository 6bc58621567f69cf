package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := NewConfig()

	assert.Equal(t, int32(3000), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Zero(t, cfg.HTTP.HSTSMaxAge)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Audit.CleanupSchedule)
	assert.True(t, cfg.Tasks.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("JWT_TOKEN_TTL", "1h")
	t.Setenv("AUTH_BCRYPT_COST", "12")
	t.Setenv("HSTS_MAX_AGE", "31536000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, "topsecret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 31536000, cfg.HTTP.HSTSMaxAge)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestNewConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_PATH=/tmp/from-dotenv.db\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DATABASE_PATH") })

	cfg := NewConfig()

	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Database.Path)
}

func TestNewConfig_EnvBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-file\n"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg := NewConfig()

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestNewConfig_UnparseableTokenTTLIsZero(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_TOKEN_TTL", "1 day")

	cfg := NewConfig()

	// rejected later by entrypoint.Build
	assert.Zero(t, cfg.Auth.TokenTTL)
}
