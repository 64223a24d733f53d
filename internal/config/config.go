// Package config resolves streakline settings. Sources are applied in order:
// built-in defaults, the YAML config file, STREAKLINE_* environment variables,
// and finally command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/streakline/internal/constants"
)

const EnvPrefix = "STREAKLINE_"

type Config struct {
	// Database is a SQLite file path or a PostgreSQL URL without a password.
	Database string `yaml:"database" env:"DB"`
	// User scopes every habit operation. Defaults to the OS user.
	User string `yaml:"user" env:"USER"`
	// Timezone decides which calendar date "today" is.
	Timezone string `yaml:"timezone" env:"TIMEZONE"`

	RedisURL        string        `yaml:"redis_url,omitempty" env:"REDIS_URL"`
	LockTTL         time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
	MutationRetries int           `yaml:"mutation_retries" env:"MUTATION_RETRIES"`
	TxTimeout       time.Duration `yaml:"tx_timeout" env:"TX_TIMEOUT"`
	CacheSize       int           `yaml:"cache_size" env:"CACHE_SIZE"`
	MetricsPushURL  string        `yaml:"metrics_push_url,omitempty" env:"METRICS_PUSH_URL"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL"`
}

func Default() Config {
	return Config{
		Database:        constants.DefaultDBPath,
		Timezone:        "Local",
		LockTTL:         constants.DefaultLockTTL,
		MutationRetries: constants.DefaultMutationRetries,
		TxTimeout:       constants.DefaultTxTimeout,
		CacheSize:       constants.DefaultCacheSize,
		LogLevel:        "info",
	}
}

// Load layers the YAML file at path (if it exists) and the environment over
// the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database must be set")
	}
	if c.MutationRetries < 0 {
		return fmt.Errorf("mutation_retries must not be negative, got %d", c.MutationRetries)
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("tx_timeout must be positive, got %s", c.TxTimeout)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("lock_ttl must be positive, got %s", c.LockTTL)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location loads the configured timezone. An empty value means local time.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ResolveUser returns the configured user, falling back to the OS account.
func (c Config) ResolveUser() string {
	if c.User != "" {
		return c.User
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "default"
}

// Write saves the config as YAML, creating parent directories.
func (c Config) Write(path string) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
