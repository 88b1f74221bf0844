// Package config loads punch.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Values of server.report_cache
const (
	ReportCacheNone   = "none"
	ReportCacheMemory = "memory"
)

// Config is the full application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Tracker  TrackerConfig  `yaml:"tracker"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	// Per-user budget for mutating requests
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	RateBurst int     `yaml:"rate_burst"`
	// Interval between SSE keepalive comments
	Keepalive time.Duration `yaml:"keepalive"`
	// ReportCache "memory" caches reports inside serve when Redis is not
	// set. CLI writes cannot invalidate it, so only enable it when every
	// client goes through the API.
	ReportCache string `yaml:"report_cache"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// RedisConfig enables cross-instance events and the shared report cache
// when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type TrackerConfig struct {
	// Timezone used to bucket days and weeks; "Local" is the server zone
	Timezone string `yaml:"timezone"`
	// Scope is the tenant used by the CLI and by tokens without one
	Scope string `yaml:"scope"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			RateLimit:   5,
			RateBurst:   10,
			Keepalive:   25 * time.Second,
		},
		Database: DatabaseConfig{Driver: "sqlite"},
		Auth:     AuthConfig{JWTSecret: "punch-dev-secret", TokenTTL: 7 * 24 * time.Hour},
		Redis:    RedisConfig{CacheTTL: 5 * time.Minute},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Tracker:  TrackerConfig{Timezone: "Local", Scope: "default"},
	}
}

// Load reads configFile, or the first of ./punch.yaml and
// ~/.punch/config.yaml that exists, over the defaults, then applies
// environment overrides. A missing file is not an error unless configFile
// was given explicitly.
func Load(configFile string) (*Config, error) {
	c := Default()

	paths := []string{"punch.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".punch", "config.yaml"))
	}
	if configFile != "" {
		paths = []string{configFile}
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) && configFile == "" {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		break
	}

	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	envOverride(&c.Server.Addr, "PUNCH_ADDR")
	envOverride(&c.Database.Driver, "PUNCH_DB_DRIVER")
	envOverride(&c.Database.DSN, "PUNCH_DB_DSN")
	envOverride(&c.Auth.JWTSecret, "PUNCH_JWT_SECRET")
	envOverride(&c.Redis.Addr, "PUNCH_REDIS_ADDR")
	envOverride(&c.Redis.Password, "PUNCH_REDIS_PASSWORD")
	envOverrideInt(&c.Redis.DB, "PUNCH_REDIS_DB")
	envOverride(&c.Log.Level, "PUNCH_LOG_LEVEL")
	envOverride(&c.Log.File, "PUNCH_LOG_FILE")
	envOverride(&c.Tracker.Timezone, "PUNCH_TIMEZONE")
	envOverride(&c.Tracker.Scope, "PUNCH_SCOPE")
	envOverride(&c.Server.ReportCache, "PUNCH_REPORT_CACHE")
}

// Validate reports configuration that cannot work
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q (valid: sqlite, mysql)", c.Database.Driver)
	}
	if c.Database.Driver == "mysql" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for mysql")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Server.ReportCache {
	case "", ReportCacheNone, ReportCacheMemory:
	default:
		return fmt.Errorf("unsupported server.report_cache %q (valid: none, memory)", c.Server.ReportCache)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server rate limit must not be negative")
	}
	return nil
}

// Location resolves the bucketing timezone
func (c *Config) Location() (*time.Location, error) {
	switch c.Tracker.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Tracker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("tracker.timezone: %w", err)
	}
	return loc, nil
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
