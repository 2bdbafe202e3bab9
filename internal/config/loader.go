// Package config provides configuration management for the live odds service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "LIVE_ODDS"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Cricket Odds API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")
	v.SetDefault("app.log_file", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost", "http://127.0.0.1"})
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 120)

	v.SetDefault("provider.base_url", "https://api.radheexch.xyz")
	v.SetDefault("provider.request_timeout_seconds", 20)
	v.SetDefault("provider.list_timeout_seconds", 10)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.base_delay_ms", 1000)
	v.SetDefault("provider.rate_limited_delay_ms", 10000)
	v.SetDefault("provider.forbidden_delay_ms", 5000)
	v.SetDefault("provider.jitter_ms", 500)
	v.SetDefault("provider.rate_limit_per_second", 2.0)
	v.SetDefault("provider.use_proxy", false)
	v.SetDefault("provider.proxy_url", "")
	v.SetDefault("provider.scraper_api_key", "")
	v.SetDefault("provider.user_agents", []string{})

	v.SetDefault("ingestion.concurrency", 1)
	v.SetDefault("ingestion.pacing_min_ms", 2000)
	v.SetDefault("ingestion.pacing_max_ms", 4000)

	v.SetDefault("cache.ttl_seconds", 30)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval_seconds", 5)
	v.SetDefault("scheduler.catalogue_interval_seconds", 60)

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.catalogue_file", "all_matches.json")
	v.SetDefault("storage.live_file", "live_matches.json")

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout_seconds", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "live_odds.updates")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("aws.secrets_enabled", false)
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.secret_name", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.daemon_addr", "127.0.0.1:2000")
	v.SetDefault("tracing.sampling_rate", 0.05)
}

func joinPath(dir, file string) string {
	if filepath.IsAbs(file) || dir == "" {
		return file
	}
	return filepath.Join(dir, file)
}
