package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.Flows.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Reports.SignedURLTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("FLOWS_TIMEOUT", "5s")
	t.Setenv("FLOWS_BASE_URL", "http://flows.internal/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.Flows.Timeout)
	assert.Equal(t, "http://flows.internal", cfg.Flows.BaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := &Config{Env: EnvProduction, StorageDriver: StorageMemory, JWT: JWTConfig{Secret: "dev_secret"}}
	assert.Error(t, cfg.Validate())
	cfg.JWT.Secret = "s3cr3t"
	assert.NoError(t, cfg.Validate())
}
