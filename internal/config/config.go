// Package config loads congressd settings from an optional YAML file with
// environment variable overrides. The upstream API key may also come from
// the OS keyring so it never has to live in a file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"congressd/internal/logging"

	"github.com/adrg/xdg"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "congressd" // application name used for config directory and keyring service

// DefaultBaseURL is the upstream Congress API root.
const DefaultBaseURL = "https://api.congress.gov/v3"

// keyringUser is the account name under which the API key is stored.
const keyringUser = "api-key"

// Config holds all runtime settings for congressd.
type Config struct {
	// APIKey is the static Congress API credential. Never logged.
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`

	// CacheBackend selects "memory" or "redis".
	CacheBackend string `yaml:"cache_backend"`

	// TTLs are in seconds.
	CacheTTLDefault   int `yaml:"cache_ttl_default"`
	CacheTTLCommittee int `yaml:"cache_ttl_committee"`
	CacheTTLHearing   int `yaml:"cache_ttl_hearing"`
	CacheTTLBill      int `yaml:"cache_ttl_bill"`
	CacheTTLMember    int `yaml:"cache_ttl_member"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPassword string `yaml:"redis_password"`

	RequestsPerHour   int `yaml:"requests_per_hour"`
	RequestsPerMinute int `yaml:"requests_per_minute"`

	LogLevel string `yaml:"log_level"`
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// DefaultConfig returns a Config with sensible defaults. These mirror the
// published Congress API limits with safety margin left underneath them.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		CacheBackend:      "memory",
		CacheTTLDefault:   3600,
		CacheTTLCommittee: 86400,
		CacheTTLHearing:   21600,
		CacheTTLBill:      7200,
		CacheTTLMember:    604800,
		RedisAddr:         "localhost:6379",
		RequestsPerHour:   4500,
		RequestsPerMinute: 75,
		LogLevel:          "info",
	}
}

// Load builds the effective configuration: defaults, then the YAML file if
// one exists, then environment variables, then the keyring as a last resort
// for the API key.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadFile(&cfg, path); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(&cfg)

	if cfg.APIKey == "" {
		if key, err := keyring.Get(APP_NAME, keyringUser); err == nil {
			logging.Debug("API key loaded from keyring")
			cfg.APIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFrom loads config from a specific path, still applying env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFile(&cfg, path); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	envString(&cfg.APIKey, "CONGRESS_API_KEY")
	envString(&cfg.BaseURL, "CONGRESS_API_BASE_URL")
	envString(&cfg.CacheBackend, "CACHE_BACKEND")
	envInt(&cfg.CacheTTLDefault, "CACHE_TTL_DEFAULT")
	envInt(&cfg.CacheTTLCommittee, "CACHE_TTL_COMMITTEE")
	envInt(&cfg.CacheTTLHearing, "CACHE_TTL_HEARING")
	envInt(&cfg.CacheTTLBill, "CACHE_TTL_BILL")
	envInt(&cfg.CacheTTLMember, "CACHE_TTL_MEMBER")
	envString(&cfg.RedisAddr, "REDIS_ADDR")
	envInt(&cfg.RedisDB, "REDIS_DB")
	envString(&cfg.RedisPassword, "REDIS_PASSWORD")
	envInt(&cfg.RequestsPerHour, "RATE_LIMIT_REQUESTS_PER_HOUR")
	envInt(&cfg.RequestsPerMinute, "RATE_LIMIT_REQUESTS_PER_MINUTE")
	envString(&cfg.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn("Ignoring non-numeric environment value", "key", key, "value", v)
		return
	}
	*dst = n
}

// Validate checks the settings that have no workable default.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("no Congress API key configured (set CONGRESS_API_KEY)")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("unknown cache backend %q (want memory or redis)", c.CacheBackend)
	}
	if c.RequestsPerHour <= 0 || c.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit thresholds must be positive")
	}
	return nil
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Restrictive permissions, the file may hold the API key
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// StoreAPIKey saves the credential in the OS keyring.
func StoreAPIKey(key string) error {
	if err := keyring.Set(APP_NAME, keyringUser, key); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// TTLFor returns the configured duration for a TTL class name. Unknown
// classes get the default TTL.
func (c *Config) TTLFor(class string) time.Duration {
	switch class {
	case "committee":
		return time.Duration(c.CacheTTLCommittee) * time.Second
	case "hearing":
		return time.Duration(c.CacheTTLHearing) * time.Second
	case "bill":
		return time.Duration(c.CacheTTLBill) * time.Second
	case "member":
		return time.Duration(c.CacheTTLMember) * time.Second
	default:
		return time.Duration(c.CacheTTLDefault) * time.Second
	}
}
