package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	// godotenv не перезаписывает уже заданные переменные, поэтому они очищаются через t.Setenv
	for _, k := range []string{"KAMA_API_URL", "JWT_SECRET", "KV_BACKEND", "MEMCACHED_ADDR", "SEARCH_CACHE_TTL", "CORS_ALLOWED_ORIGINS", "RABBITMQ_ENABLED"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	path := writeEnv(t, `
KAMA_API_URL=http://kama:5000/
JWT_SECRET=secret
KV_BACKEND=memcached
MEMCACHED_ADDR=mc1:11211, mc2:11211
SEARCH_CACHE_TTL=45s
CORS_ALLOWED_ORIGINS=http://a.test,http://b.test
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://kama:5000", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, KVBackendMemcached, cfg.KV.Backend)
	assert.Equal(t, []string{"mc1:11211", "mc2:11211"}, cfg.KV.MemcachedAddr)
	assert.Equal(t, 45*time.Second, cfg.Cache.SearchTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Rest.AllowedOrigins)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("KAMA_API_URL", "http://kama")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("KV_BACKEND", "memory")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://kama", cfg.Upstream.BaseURL)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("KAMA_API_URL", "http://kama")
	t.Setenv("JWT_SECRET", "s")
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("KV_BACKEND", "redis")
	_, err := LoadConfig(missing)
	assert.Error(t, err)

	t.Setenv("KV_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadConfig(missing)
	assert.Error(t, err)

	t.Setenv("KV_BACKEND", "memory")
	t.Setenv("RABBITMQ_ENABLED", "true")
	t.Setenv("RABBITMQ_URL", "")
	_, err = LoadConfig(missing)
	assert.Error(t, err)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TTL", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_TTL", time.Minute))
}
