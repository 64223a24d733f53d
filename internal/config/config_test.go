package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MutationRetries != constants.DefaultMutationRetries {
		t.Errorf("MutationRetries = %d, want %d", cfg.MutationRetries, constants.DefaultMutationRetries)
	}
	if cfg.TxTimeout != constants.DefaultTxTimeout {
		t.Errorf("TxTimeout = %s, want %s", cfg.TxTimeout, constants.DefaultTxTimeout)
	}
	if cfg.Database != constants.DefaultDBPath {
		t.Errorf("Database = %q, want %q", cfg.Database, constants.DefaultDBPath)
	}
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database: /tmp/habits.db
user: alice
timezone: Europe/Berlin
mutation_retries: 5
tx_timeout: 2s
cache_size: 64
log_level: DEBUG
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("STREAKLINE_USER", "bob")
	t.Setenv("STREAKLINE_LOCK_TTL", "30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database != "/tmp/habits.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.User != "bob" {
		t.Errorf("User = %q, want env override bob", cfg.User)
	}
	if cfg.MutationRetries != 5 {
		t.Errorf("MutationRetries = %d, want 5", cfg.MutationRetries)
	}
	if cfg.TxTimeout != 2*time.Second {
		t.Errorf("TxTimeout = %s, want 2s", cfg.TxTimeout)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Errorf("LockTTL = %s, want 30s", cfg.LockTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mutation_retries: [oops"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty database", mutate: func(c *Config) { c.Database = " " }, wantErr: "database"},
		{name: "negative retries", mutate: func(c *Config) { c.MutationRetries = -1 }, wantErr: "mutation_retries"},
		{name: "zero timeout", mutate: func(c *Config) { c.TxTimeout = 0 }, wantErr: "tx_timeout"},
		{name: "zero lock ttl", mutate: func(c *Config) { c.LockTTL = 0 }, wantErr: "lock_ttl"},
		{name: "zero cache", mutate: func(c *Config) { c.CacheSize = 0 }, wantErr: "cache_size"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveUser(t *testing.T) {
	cfg := Default()
	cfg.User = "carol"
	if got := cfg.ResolveUser(); got != "carol" {
		t.Errorf("ResolveUser() = %q, want carol", got)
	}
	cfg.User = ""
	if got := cfg.ResolveUser(); got == "" {
		t.Error("ResolveUser() should fall back to a non-empty name")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.User = "dana"
	cfg.RedisURL = "redis://localhost:6379/0"
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/.config/streakline"); got != filepath.Join(home, ".config/streakline") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome changed an absolute path: %q", got)
	}
	if got := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("ExpandHome expanded another user's home: %q", got)
	}
}
