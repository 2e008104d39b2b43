package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Provider: ProviderConfig{Name: "goodreads", BaseURL: "https://www.goodreads.com"},
		Fetch:    FetchConfig{Timeout: 30 * time.Second, RPS: 1, Burst: 3},
		Cache:    CacheConfig{Size: 100, TTL: time.Hour},
		Bulk:     BulkConfig{Concurrency: 4},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "goodreads", cfg.Provider.Name)
	assert.Equal(t, "https://www.goodreads.com", cfg.Provider.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.InDelta(t, 1.0, cfg.Fetch.RPS, 0.0001)
	assert.Equal(t, 3, cfg.Fetch.Burst)
	assert.Equal(t, 50000, cfg.Cache.Size)
	assert.Empty(t, cfg.Cache.Path)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Bulk.Concurrency)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("BULK_CONCURRENCY", "8")
	t.Setenv("FETCH_RPS", "2.5")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-log-level", "debug",
		"-cache-size", "0",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, "flag beats env")
	assert.Equal(t, 8, cfg.Bulk.Concurrency, "env beats default")
	assert.InDelta(t, 2.5, cfg.Fetch.RPS, 0.0001)
	assert.Equal(t, 0, cfg.Cache.Size)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PROVIDER_BASE_URL=http://localhost:9999\n"), 0o600))
	t.Setenv("PROVIDER_BASE_URL", "")

	cfg, err := LoadConfig([]string{"-env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Provider.BaseURL)
}

func TestLoadConfig_CachePathExpanded(t *testing.T) {
	cfg, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-cache-path", "relative/cache",
	})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.Cache.Path))
	assert.Equal(t, "cache", filepath.Base(cfg.Cache.Path))
}

func TestLoadConfig_RecordsDB(t *testing.T) {
	t.Setenv("RECORDS_DB", "")

	cfg, err := LoadConfig([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	assert.Empty(t, cfg.Records.Path)

	t.Setenv("RECORDS_DB", "data/records.db")
	cfg, err = LoadConfig([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Records.Path))
	assert.Equal(t, "records.db", filepath.Base(cfg.Records.Path))
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad duration", []string{"-fetch-timeout", "soon"}},
		{"bad int", []string{"-concurrency", "many"}},
		{"bad float", []string{"-fetch-rps", "fast"}},
		{"zero concurrency", []string{"-concurrency", "0"}},
		{"negative cache", []string{"-cache-size", "-1"}},
		{"bad env", []string{"-env", "test"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")}, tt.args...)
			_, err := LoadConfig(args)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"valid", func(*Config) {}, true},
		{"staging", func(c *Config) { c.App.Environment = "staging" }, true},
		{"uppercase env", func(c *Config) { c.App.Environment = "DEVELOPMENT" }, false},
		{"uppercase level", func(c *Config) { c.Logger.Level = "DEBUG" }, true},
		{"bad level", func(c *Config) { c.Logger.Level = "trace" }, false},
		{"bad format", func(c *Config) { c.Logger.Format = "xml" }, false},
		{"text format", func(c *Config) { c.Logger.Format = "text" }, true},
		{"no provider", func(c *Config) { c.Provider.Name = "" }, false},
		{"bad base url", func(c *Config) { c.Provider.BaseURL = "goodreads.com" }, false},
		{"zero rps", func(c *Config) { c.Fetch.RPS = 0 }, false},
		{"zero burst", func(c *Config) { c.Fetch.Burst = 0 }, false},
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, false},
		{"cache disabled", func(c *Config) { c.Cache.Size = 0 }, true},
		{"cache path without ttl", func(c *Config) { c.Cache.Path = "/tmp/x"; c.Cache.TTL = 0 }, false},
		{"zero concurrency", func(c *Config) { c.Bulk.Concurrency = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/cache/pages")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "cache", "pages"), got)

	got, err = expandPath("/var/cache/../cache/pages")
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/pages", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_UNSET_KEY", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# comment

TEST_ENVFILE_A=plain
TEST_ENVFILE_B = "quoted value"
TEST_ENVFILE_C='single'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TEST_ENVFILE_A")
		os.Unsetenv("TEST_ENVFILE_B")
		os.Unsetenv("TEST_ENVFILE_C")
	})

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "plain", os.Getenv("TEST_ENVFILE_A"))
	assert.Equal(t, "quoted value", os.Getenv("TEST_ENVFILE_B"))
	assert.Equal(t, "single", os.Getenv("TEST_ENVFILE_C"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TEST_ENVFILE_KEEP=file\n"), 0o600))
	t.Setenv("TEST_ENVFILE_KEEP", "process")

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "process", os.Getenv("TEST_ENVFILE_KEEP"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NO_EQUALS_SIGN\n"), 0o600))

	err := loadEnvFile(envFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}
