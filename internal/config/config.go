// Package config provides configuration management for the live odds service.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Provider  ProviderConfig  `mapstructure:"provider" validate:"required"`
	Ingestion IngestionConfig `mapstructure:"ingestion" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
	LogFile     string `mapstructure:"log_file"`
}

// ServerConfig represents the inbound HTTP API configuration
type ServerConfig struct {
	Host                string   `mapstructure:"host"`
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// ProviderConfig represents the upstream odds provider configuration
type ProviderConfig struct {
	BaseURL               string   `mapstructure:"base_url" validate:"required,url"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	ListTimeoutSeconds    int      `mapstructure:"list_timeout_seconds" validate:"required,gt=0"`
	MaxRetries            int      `mapstructure:"max_retries" validate:"required,gt=0"`
	BaseDelayMs           int      `mapstructure:"base_delay_ms" validate:"gte=0"`
	RateLimitedDelayMs    int      `mapstructure:"rate_limited_delay_ms" validate:"gte=0"`
	ForbiddenDelayMs      int      `mapstructure:"forbidden_delay_ms" validate:"gte=0"`
	JitterMs              int      `mapstructure:"jitter_ms" validate:"gte=0"`
	RateLimitPerSecond    float64  `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	UseProxy              bool     `mapstructure:"use_proxy"`
	ProxyURL              string   `mapstructure:"proxy_url" validate:"omitempty,url"`
	ScraperAPIKey         string   `mapstructure:"scraper_api_key"`
	UserAgents            []string `mapstructure:"user_agents"`
}

// IngestionConfig represents orchestrator pacing configuration
type IngestionConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"required,gt=0"`
	PacingMinMs int `mapstructure:"pacing_min_ms" validate:"gte=0"`
	PacingMaxMs int `mapstructure:"pacing_max_ms" validate:"gte=0"`
}

// CacheConfig represents the live results cache configuration
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"required,gt=0"`
}

// SchedulerConfig represents background refresh scheduling
type SchedulerConfig struct {
	Enabled                  bool `mapstructure:"enabled"`
	IntervalSeconds          int  `mapstructure:"interval_seconds" validate:"required,gt=0"`
	CatalogueIntervalSeconds int  `mapstructure:"catalogue_interval_seconds" validate:"gte=0"`
}

// StorageConfig represents on-disk file locations
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir" validate:"required"`
	CatalogueFile string `mapstructure:"catalogue_file" validate:"required"`
	LiveFile      string `mapstructure:"live_file" validate:"required"`
}

// WebhookConfig represents the optional downstream push target
type WebhookConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// RedisConfig represents the optional Redis stream publisher
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Stream   string `mapstructure:"stream"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AWSConfig represents the Secrets Manager overlay settings
type AWSConfig struct {
	SecretsEnabled bool   `mapstructure:"secrets_enabled"`
	Region         string `mapstructure:"region"`
	SecretName     string `mapstructure:"secret_name"`
}

// TracingConfig represents AWS X-Ray tracing settings
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	DaemonAddr   string  `mapstructure:"daemon_addr"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"gte=0,lte=1"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddress returns host:port for the API server
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Origins returns the allowed CORS origins. Entries may themselves be comma
// separated lists.
func (c *Config) Origins() []string {
	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	for _, entry := range c.Server.AllowedOrigins {
		for _, o := range strings.Split(entry, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}

// EventDetailURL returns the provider endpoint prefix for per-event odds
func (c *ProviderConfig) EventDetailURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/delaymarkets/events/detail"
}

// MatchListURL returns the provider endpoint for the match listing
func (c *ProviderConfig) MatchListURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/delaymarkets/markets/eventtype/4"
}

// ResolveProxyURL returns the proxy to route provider traffic through, or ""
func (c *ProviderConfig) ResolveProxyURL() string {
	if !c.UseProxy {
		return ""
	}
	if c.ScraperAPIKey != "" {
		return fmt.Sprintf("http://scraperapi:%s@proxy-server.scraperapi.com:8001", c.ScraperAPIKey)
	}
	return c.ProxyURL
}

// RequestTimeout returns the per-event request timeout
func (c *ProviderConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ListTimeout returns the match listing request timeout
func (c *ProviderConfig) ListTimeout() time.Duration {
	return time.Duration(c.ListTimeoutSeconds) * time.Second
}

// BaseDelay returns the retry backoff base
func (c *ProviderConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// TTL returns the cache freshness window
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// CataloguePath returns the full path of the match catalogue file
func (c *StorageConfig) CataloguePath() string {
	return joinPath(c.DataDir, c.CatalogueFile)
}

// LivePath returns the full path of the live results snapshot
func (c *StorageConfig) LivePath() string {
	return joinPath(c.DataDir, c.LiveFile)
}

// WebhookTimeout returns the push timeout, defaulting to five seconds
func (c *WebhookConfig) WebhookTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
