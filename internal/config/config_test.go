package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %s, got %s", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.CacheBackend != "memory" {
		t.Errorf("expected memory cache backend, got %s", cfg.CacheBackend)
	}
	if cfg.RequestsPerHour != 4500 || cfg.RequestsPerMinute != 75 {
		t.Errorf("unexpected rate limit defaults: %d/h %d/m", cfg.RequestsPerHour, cfg.RequestsPerMinute)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	original := DefaultConfig()
	original.APIKey = "test-key"
	original.CacheBackend = "redis"
	original.RedisAddr = "redis.internal:6379"
	original.CacheTTLBill = 1234

	if err := original.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	// Config files can hold the credential, so they must not be world readable.
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("failed to stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected file mode 0600, got %o", perm)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.APIKey != "test-key" {
		t.Errorf("expected api key round-trip, got %q", loaded.APIKey)
	}
	if loaded.CacheBackend != "redis" || loaded.RedisAddr != "redis.internal:6379" {
		t.Errorf("redis settings not preserved: %+v", loaded)
	}
	if loaded.CacheTTLBill != 1234 {
		t.Errorf("expected bill TTL 1234, got %d", loaded.CacheTTLBill)
	}
}

func TestEnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	original := DefaultConfig()
	original.APIKey = "file-key"
	if err := original.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	t.Setenv("CONGRESS_API_KEY", "env-key")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_MINUTE", "10")
	t.Setenv("CACHE_TTL_DEFAULT", "not-a-number")

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.APIKey != "env-key" {
		t.Errorf("environment should override file, got %q", loaded.APIKey)
	}
	if loaded.RequestsPerMinute != 10 {
		t.Errorf("expected per-minute override 10, got %d", loaded.RequestsPerMinute)
	}
	if loaded.CacheTTLDefault != 3600 {
		t.Errorf("non-numeric env value should be ignored, got %d", loaded.CacheTTLDefault)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing key", func(c *Config) { c.APIKey = "" }, true},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"bad backend", func(c *Config) { c.CacheBackend = "memcached" }, true},
		{"zero rate limit", func(c *Config) { c.RequestsPerHour = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.APIKey = "k"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestTTLFor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		class string
		want  time.Duration
	}{
		{"committee", 24 * time.Hour},
		{"hearing", 6 * time.Hour},
		{"bill", 2 * time.Hour},
		{"member", 7 * 24 * time.Hour},
		{"unknown", time.Hour},
		{"", time.Hour},
	}

	for _, tt := range tests {
		if got := cfg.TTLFor(tt.class); got != tt.want {
			t.Errorf("TTLFor(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}
