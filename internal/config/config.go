// Package config resolves runtime settings from defaults, an optional .env
// file and PROGRESSTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Property store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all runtime configuration.
type Config struct {
	// DBPath is the SQLite database file. Empty means store.DefaultDBPath.
	DBPath string

	// CoursePath is the course definition YAML. Activity and assessment
	// files are resolved relative to its directory.
	CoursePath string

	// PropertyBackend selects where progress blobs live.
	// Values: "sqlite", "redis"
	PropertyBackend string

	Redis RedisConfig

	// LogMode is passed to logging.New. Values: "dev", "debug", "prod"
	LogMode string

	// PageSize bounds each scan during aggregation. Default: 500.
	PageSize int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Default: "progresstrack"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CoursePath:      "course.yaml",
		PropertyBackend: BackendSQLite,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "progresstrack",
		},
		LogMode:  "dev",
		PageSize: 500,
	}
}

// LoadDotEnv loads variables from path (".env" when empty) without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if p := os.Getenv("PROGRESSTRACK_DB"); p != "" {
		cfg.DBPath = p
	}
	if p := os.Getenv("PROGRESSTRACK_COURSE"); p != "" {
		cfg.CoursePath = p
	}
	if b := os.Getenv("PROGRESSTRACK_PROPERTY_BACKEND"); b != "" {
		cfg.PropertyBackend = b
	}
	if m := os.Getenv("PROGRESSTRACK_LOG_MODE"); m != "" {
		cfg.LogMode = m
	}

	if a := os.Getenv("PROGRESSTRACK_REDIS_ADDR"); a != "" {
		cfg.Redis.Addr = a
	}
	if p := os.Getenv("PROGRESSTRACK_REDIS_PASSWORD"); p != "" {
		cfg.Redis.Password = p
	}
	if p := os.Getenv("PROGRESSTRACK_REDIS_PREFIX"); p != "" {
		cfg.Redis.Prefix = p
	}
	if d := os.Getenv("PROGRESSTRACK_REDIS_DB"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return Config{}, fmt.Errorf("PROGRESSTRACK_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	if s := os.Getenv("PROGRESSTRACK_PAGE_SIZE"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("PROGRESSTRACK_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}

	return cfg, nil
}

// Validate checks that the selected backend is usable.
func (c Config) Validate() error {
	switch c.PropertyBackend {
	case BackendSQLite:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("PROGRESSTRACK_REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown property backend: %q", c.PropertyBackend)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	return nil
}
