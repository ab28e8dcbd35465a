package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.PropertyBackend)
	assert.Equal(t, 500, cfg.PageSize)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PROGRESSTRACK_DB", "/tmp/p.db")
	t.Setenv("PROGRESSTRACK_COURSE", "/srv/course/course.yaml")
	t.Setenv("PROGRESSTRACK_PROPERTY_BACKEND", "redis")
	t.Setenv("PROGRESSTRACK_REDIS_ADDR", "redis:6380")
	t.Setenv("PROGRESSTRACK_REDIS_DB", "3")
	t.Setenv("PROGRESSTRACK_PAGE_SIZE", "50")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.db", cfg.DBPath)
	assert.Equal(t, "/srv/course/course.yaml", cfg.CoursePath)
	assert.Equal(t, BackendRedis, cfg.PropertyBackend)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "progresstrack", cfg.Redis.Prefix)
	assert.Equal(t, 50, cfg.PageSize)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnvBadNumbers(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{"redis db", "PROGRESSTRACK_REDIS_DB"},
		{"page size", "PROGRESSTRACK_PAGE_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, "many")
			_, err := ConfigFromEnv()
			assert.ErrorContains(t, err, tt.env)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"redis without addr", func(c *Config) { c.PropertyBackend = BackendRedis; c.Redis.Addr = "" }, true},
		{"unknown backend", func(c *Config) { c.PropertyBackend = "etcd" }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	// Missing file is fine.
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PROGRESSTRACK_LOG_MODE=prod\n"), 0o644))
	t.Setenv("PROGRESSTRACK_LOG_MODE", "")
	os.Unsetenv("PROGRESSTRACK_LOG_MODE")

	require.NoError(t, LoadDotEnv(path))
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.LogMode)
}
