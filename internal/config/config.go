// Package config loads application configuration from command-line flags,
// environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Provider ProviderConfig
	Fetch    FetchConfig
	Cache    CacheConfig
	Bulk     BulkConfig
	Records  RecordsConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // Optional; derived from the environment when empty
}

// ProviderConfig selects and addresses the metadata provider.
type ProviderConfig struct {
	Name    string // Registry name (default: goodreads)
	BaseURL string // Site root (default: https://www.goodreads.com)
}

// FetchConfig tunes the HTTP page fetcher.
type FetchConfig struct {
	UserAgent string        // Empty means the built-in browser user agent
	Timeout   time.Duration // Per request (default: 30s)
	RPS       float64       // Requests per second per host (default: 1)
	Burst     int           // Token bucket burst (default: 3)
}

// CacheConfig holds the page cache tiers.
type CacheConfig struct {
	Size int           // In-memory LRU capacity in pages; 0 disables (default: 50000)
	Path string        // Badger directory for the persistent tier; empty disables
	TTL  time.Duration // Persistent tier lifetime (default: 24h)
}

// BulkConfig holds bulk operation settings.
type BulkConfig struct {
	Concurrency int // Parallel fetches per bulk call (default: 4)
}

// RecordsConfig holds the SQLite database scraped records are saved to.
type RecordsConfig struct {
	Path string // Empty disables persistence
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// Flags are the raw command-line values. Empty strings mean "not set".
type Flags struct {
	Env          string
	LogLevel     string
	LogFormat    string
	Provider     string
	BaseURL      string
	UserAgent    string
	FetchTimeout string
	FetchRPS     string
	FetchBurst   string
	CacheSize    string
	CachePath    string
	CacheTTL     string
	Concurrency  string
	RecordsDB    string
	Port         string
	ReadTimeout  string
	WriteTimeout string
	IdleTimeout  string
	EnvFile      string
}

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format (json, text, pretty)")
	fs.StringVar(&f.Provider, "provider", "", "Metadata provider (default: goodreads)")
	fs.StringVar(&f.BaseURL, "base-url", "", "Provider base URL")
	fs.StringVar(&f.UserAgent, "user-agent", "", "User-Agent header for page fetches")
	fs.StringVar(&f.FetchTimeout, "fetch-timeout", "", "Per-request fetch timeout (default: 30s)")
	fs.StringVar(&f.FetchRPS, "fetch-rps", "", "Requests per second per host (default: 1)")
	fs.StringVar(&f.FetchBurst, "fetch-burst", "", "Rate limit burst (default: 3)")
	fs.StringVar(&f.CacheSize, "cache-size", "", "In-memory page cache capacity, 0 disables (default: 50000)")
	fs.StringVar(&f.CachePath, "cache-path", "", "Directory for the persistent page cache")
	fs.StringVar(&f.CacheTTL, "cache-ttl", "", "Persistent page cache lifetime (default: 24h)")
	fs.StringVar(&f.Concurrency, "concurrency", "", "Parallel fetches in bulk operations (default: 4)")
	fs.StringVar(&f.RecordsDB, "records-db", "", "SQLite file to save scraped records to")
	fs.StringVar(&f.Port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&f.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&f.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 60s)")
	fs.StringVar(&f.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")
	return f
}

// LoadConfig parses args and loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("catalog-scraper", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return Load(flags)
}

// Load builds a Config from already parsed flags.
func Load(f *Flags) (*Config, error) {
	if f == nil {
		f = &Flags{}
	}
	if f.EnvFile != "" {
		// Load .env file if it exists (silently ignore if not found).
		_ = loadEnvFile(f.EnvFile)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(f.LogLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(f.LogFormat, "LOG_FORMAT", ""),
		},
		Provider: ProviderConfig{
			Name:    getConfigValue(f.Provider, "PROVIDER", "goodreads"),
			BaseURL: getConfigValue(f.BaseURL, "PROVIDER_BASE_URL", "https://www.goodreads.com"),
		},
		Fetch: FetchConfig{
			UserAgent: getConfigValue(f.UserAgent, "USER_AGENT", ""),
		},
		Cache: CacheConfig{
			Path: getConfigValue(f.CachePath, "CACHE_PATH", ""),
		},
		Records: RecordsConfig{
			Path: getConfigValue(f.RecordsDB, "RECORDS_DB", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(f.Port, "SERVER_PORT", "8080"),
		},
	}

	var err error
	parse := func(dst *time.Duration, flagValue, envKey, def string) {
		if err == nil {
			*dst, err = getDurationConfigValue(flagValue, envKey, def)
		}
	}
	parse(&cfg.Fetch.Timeout, f.FetchTimeout, "FETCH_TIMEOUT", "30s")
	parse(&cfg.Cache.TTL, f.CacheTTL, "CACHE_TTL", "24h")
	parse(&cfg.Server.ReadTimeout, f.ReadTimeout, "SERVER_READ_TIMEOUT", "15s")
	parse(&cfg.Server.WriteTimeout, f.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s")
	parse(&cfg.Server.IdleTimeout, f.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	if cfg.Fetch.RPS, err = getFloatConfigValue(f.FetchRPS, "FETCH_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.Fetch.Burst, err = getIntConfigValue(f.FetchBurst, "FETCH_BURST", 3); err != nil {
		return nil, err
	}
	if cfg.Cache.Size, err = getIntConfigValue(f.CacheSize, "CACHE_SIZE", 50000); err != nil {
		return nil, err
	}
	if cfg.Bulk.Concurrency, err = getIntConfigValue(f.Concurrency, "BULK_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	if cfg.Cache.Path != "" {
		if cfg.Cache.Path, err = expandPath(cfg.Cache.Path); err != nil {
			return nil, fmt.Errorf("invalid cache path: %w", err)
		}
	}

	if cfg.Records.Path != "" {
		if cfg.Records.Path, err = expandPath(cfg.Records.Path); err != nil {
			return nil, fmt.Errorf("invalid records path: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "text", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json, text, or pretty)", c.Logger.Format)
	}

	if c.Provider.Name == "" {
		return errors.New("provider name cannot be empty")
	}
	if !strings.HasPrefix(c.Provider.BaseURL, "http://") && !strings.HasPrefix(c.Provider.BaseURL, "https://") {
		return fmt.Errorf("invalid provider base URL: %q", c.Provider.BaseURL)
	}

	if c.Fetch.RPS <= 0 {
		return fmt.Errorf("fetch RPS must be positive, got %v", c.Fetch.RPS)
	}
	if c.Fetch.Burst <= 0 {
		return fmt.Errorf("fetch burst must be positive, got %d", c.Fetch.Burst)
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size cannot be negative, got %d", c.Cache.Size)
	}
	if c.Cache.Path != "" && c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive when a cache path is set")
	}
	if c.Bulk.Concurrency <= 0 {
		return fmt.Errorf("bulk concurrency must be positive, got %d", c.Bulk.Concurrency)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
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

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return v, nil
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return v, nil
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
