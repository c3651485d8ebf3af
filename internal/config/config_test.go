package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("INTERNAL_API_KEY", "secret-key")
	t.Setenv("APPROVALS_HOST", "https://approvals.example.com/")
	t.Setenv("SESSION_COOKIE_TTL", "2h")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.MinIO.UseSSL)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Equal(t, "secret-key", cfg.Approvals.APIKey)
	assert.Equal(t, "https://approvals.example.com", cfg.Approvals.Host)
	assert.Equal(t, "secret-key", cfg.Session.Password)
	assert.Equal(t, 2*time.Hour, cfg.Session.CookieTTL)
}

func TestLoad_AccessPasswordOverride(t *testing.T) {
	t.Setenv("INTERNAL_API_KEY", "secret-key")
	t.Setenv("ACCESS_PASSWORD", "door")

	cfg := Load()

	assert.Equal(t, "secret-key", cfg.Approvals.APIKey)
	assert.Equal(t, "door", cfg.Session.Password)
}

func TestApprovalsHost(t *testing.T) {
	t.Run("pod hostname is ignored", func(t *testing.T) {
		t.Setenv("APPROVALS_HOST", "")
		t.Setenv("HOSTNAME", "approvals-ui-7d9f8c-xk2p")
		assert.Equal(t, DefaultApprovalsHost, approvalsHost())
	})

	t.Run("url hostname is used", func(t *testing.T) {
		t.Setenv("APPROVALS_HOST", "")
		t.Setenv("HOSTNAME", "http://localhost:9000/")
		assert.Equal(t, "http://localhost:9000", approvalsHost())
	})

	t.Run("explicit host wins", func(t *testing.T) {
		t.Setenv("APPROVALS_HOST", "http://approvals:8000")
		t.Setenv("HOSTNAME", "http://localhost:9000")
		assert.Equal(t, "http://approvals:8000", approvalsHost())
	})
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	os.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))

	os.Unsetenv(key)
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}
