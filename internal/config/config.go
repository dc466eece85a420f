// Package config loads ShoeFit server configuration from layered sources.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/shoefit/shoefit-server/internal/logger"
	"github.com/shoefit/shoefit-server/internal/recommend"
)

const (
	// EnvPrefix is stripped from environment variables: SHOEFIT_SERVER_PORT -> server.port.
	EnvPrefix = "SHOEFIT_"
	// ConfigPathEnvVar names the YAML config file when --config is not given.
	ConfigPathEnvVar = EnvPrefix + "CONFIG"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Logger    LoggerConfig    `koanf:"logger"`
	Data      DataConfig      `koanf:"data"`
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Metrics   MetricsConfig   `koanf:"metrics"`

	// File is the YAML file the config was loaded from, if any.
	File string `koanf:"-"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `koanf:"environment"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, pretty, or empty to pick by environment
}

// DataConfig locates on-disk state.
type DataConfig struct {
	BasePath string `koanf:"base_path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          string        `koanf:"port"`
	ReadTimeout   time.Duration `koanf:"read_timeout"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	CORSOrigins   []string      `koanf:"cors_origins"`
	RateLimit     int           `koanf:"rate_limit"` // requests per minute per IP, 0 disables
	MaxImageBytes int64         `koanf:"max_image_bytes"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokenKey is an optional hex PASETO key. Empty means <data>/token.key.
	TokenKey             string        `koanf:"token_key"`
	AccessTokenDuration  time.Duration `koanf:"access_token_duration"`
	RefreshTokenDuration time.Duration `koanf:"refresh_token_duration"`
	RateLimit            float64       `koanf:"rate_limit"` // auth requests per second per IP
	RateBurst            int           `koanf:"rate_burst"`
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	Policy string `koanf:"policy"` // mixed or same_system
}

// CacheConfig configures the recommendation cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Port:          "8080",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  30 * time.Second,
			IdleTimeout:   60 * time.Second,
			CORSOrigins:   []string{"*"},
			RateLimit:     300,
			MaxImageBytes: 10 << 20,
		},
		Auth: AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 30 * 24 * time.Hour,
			RateLimit:            1,
			RateBurst:            10,
		},
		Recommend: RecommendConfig{Policy: string(recommend.PolicyMixed)},
		Cache:     CacheConfig{Enabled: true, TTL: 10 * time.Minute},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"env":        "app.environment",
	"log-level":  "logger.level",
	"log-format": "logger.format",
	"data-path":  "data.base_path",
	"port":       "server.port",
	"policy":     "recommend.policy",
}

// Load builds the configuration. Precedence, lowest to highest:
//  1. Default()
//  2. YAML file from --config or SHOEFIT_CONFIG
//  3. .env file (--env-file, default ".env"); never overrides real env vars
//  4. SHOEFIT_* environment variables
//  5. command-line flags
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("shoefit", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	envFile := fs.String("env-file", ".env", "Path to .env file")
	fs.String("env", "", "Environment (development, staging, production)")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (json, pretty)")
	fs.String("data-path", "", "Base path for database, index, cache and images")
	fs.String("port", "", "HTTP port")
	fs.String("policy", "", "Size system policy (mixed, same_system)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && flagErr == nil {
			flagErr = k.Set(key, f.Value.String())
		}
	})
	if flagErr != nil {
		return nil, fmt.Errorf("apply flags: %w", flagErr)
	}

	if err := splitListKeys(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = path

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps SHOEFIT_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// splitListKeys turns comma-separated strings from env vars or flags into lists.
func splitListKeys(k *koanf.Koanf, keys ...string) error {
	for _, key := range keys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	if _, ok := logger.LookupLevel(c.Logger.Level); !ok {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.MaxImageBytes <= 0 {
		return errors.New("server max image bytes must be positive")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server rate limit cannot be negative")
	}

	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	if c.Auth.AccessTokenDuration >= c.Auth.RefreshTokenDuration {
		return errors.New("access token duration must be shorter than refresh token duration")
	}
	if c.Auth.RateLimit <= 0 || c.Auth.RateBurst <= 0 {
		return errors.New("auth rate limit and burst must be positive")
	}

	if _, err := recommend.ParsePolicy(c.Recommend.Policy); err != nil {
		return err
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("cache ttl must be positive when the cache is enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /: %q", c.Metrics.Path)
	}

	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DatabasePath is the SQLite database file.
func (c *Config) DatabasePath() string { return filepath.Join(c.Data.BasePath, "shoefit.db") }

// SearchPath is the bleve index directory.
func (c *Config) SearchPath() string { return filepath.Join(c.Data.BasePath, "search") }

// CachePath is the badger cache directory.
func (c *Config) CachePath() string { return filepath.Join(c.Data.BasePath, "cache") }

// ImagesPath is the catalog image directory.
func (c *Config) ImagesPath() string { return filepath.Join(c.Data.BasePath, "images") }

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data directory to ~/.shoefit.
func (c *Config) expandDataPath() error {
	defaultPath := ""
	if c.Data.BasePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, ".shoefit")
	}

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// loadEnvFile loads KEY=value lines into the process environment.
// Variables that are already set are left alone.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
