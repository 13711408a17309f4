package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/foodbridge")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 256, cfg.EventBuffer)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadConfig_MemoryBackendSkipsStores(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"REDIS_URL": "redis://x", "JWT_SECRET": "s"}},
		{"missing redis url", map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"}},
		{"missing jwt secret", map[string]string{"STORE_BACKEND": "memory"}},
		{"bad expiry", map[string]string{"STORE_BACKEND": "memory", "JWT_SECRET": "s", "JWT_EXPIRY": "soon"}},
		{"bad buffer", map[string]string{"STORE_BACKEND": "memory", "JWT_SECRET": "s", "EVENT_BUFFER": "0"}},
		{"unknown backend", map[string]string{"STORE_BACKEND": "mongo", "JWT_SECRET": "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "JWT_EXPIRY", "EVENT_BUFFER", "STORE_BACKEND"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
