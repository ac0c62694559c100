package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the server configuration. It is read from an optional YAML file
// and then overridden by environment variables.
type Config struct {
	Addr      string          `yaml:"addr"`
	LogLevel  string          `yaml:"log_level"`
	Settings  SettingsConfig  `yaml:"settings"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Expansion ExpansionConfig `yaml:"expansion"`
}

// SettingsConfig selects where credentials are persisted.
type SettingsConfig struct {
	Backend       string        `yaml:"backend"`
	Scope         string        `yaml:"scope"`
	SQLitePath    string        `yaml:"sqlite_path"`
	DatabaseURL   string        `yaml:"database_url"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
}

type AnthropicConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type ExpansionConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Reconcile bool          `yaml:"reconcile"`
}

func defaultConfig() Config {
	return Config{
		Addr:     ":3000",
		LogLevel: "info",
		Settings: SettingsConfig{
			Backend:    BackendSQLite,
			SQLitePath: "canvas.db",
			RedisAddr:  "localhost:6379",
		},
		Expansion: ExpansionConfig{Timeout: 60 * time.Second},
	}
}

// loadConfig builds the configuration from defaults, the file at path (if
// any) and the environment as seen through getenv.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	override := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Addr, "CANVAS_ADDR")
	override(&cfg.LogLevel, "CANVAS_LOG_LEVEL")
	override(&cfg.Settings.Backend, "CANVAS_SETTINGS_BACKEND")
	override(&cfg.Settings.SQLitePath, "CANVAS_SQLITE_PATH")
	override(&cfg.Settings.DatabaseURL, "DATABASE_URL")
	override(&cfg.Settings.RedisAddr, "REDIS_ADDR")
	override(&cfg.Anthropic.BaseURL, "ANTHROPIC_BASE_URL")

	if v := getenv("CANVAS_EXPANSION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CANVAS_EXPANSION_TIMEOUT: %w", err)
		}
		cfg.Expansion.Timeout = d
	}
	if v := getenv("CANVAS_RECONCILE_PLACEHOLDERS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("CANVAS_RECONCILE_PLACEHOLDERS: %w", err)
		}
		cfg.Expansion.Reconcile = b
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Settings.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	case BackendPostgres:
		if c.Settings.DatabaseURL == "" {
			return fmt.Errorf("settings backend %q needs DATABASE_URL", c.Settings.Backend)
		}
	default:
		return fmt.Errorf("unknown settings backend %q", c.Settings.Backend)
	}
	if c.Expansion.Timeout <= 0 {
		return fmt.Errorf("expansion timeout must be positive, got %s", c.Expansion.Timeout)
	}
	return nil
}
