// Package config provides configuration management for the transcript
// service. Values are resolved in order: defaults, an optional YAML config
// file, then TRANSCRIPTD_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytfetch/transcript-service/pkg/cache"
	"github.com/ytfetch/transcript-service/pkg/logging"
	"github.com/ytfetch/transcript-service/pkg/ratelimit"
	"github.com/ytfetch/transcript-service/pkg/service"
	"github.com/ytfetch/transcript-service/pkg/workerpool"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. TRANSCRIPTD_SERVER_PORT maps to server.port.
const envPrefix = "TRANSCRIPTD"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// RateLimitConfig holds adaptive rate limiter settings.
type RateLimitConfig struct {
	InitialRate int           `mapstructure:"initial_rate"`
	MinRate     int           `mapstructure:"min_rate"`
	MaxRate     int           `mapstructure:"max_rate"`
	Window      time.Duration `mapstructure:"window"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	MaxSize int           `mapstructure:"max_size"`
}

// PoolConfig holds worker pool settings.
type PoolConfig struct {
	MaxWorkers      int           `mapstructure:"max_workers"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
}

// FetchConfig holds retry settings for individual fetches.
type FetchConfig struct {
	RetryBudget  int           `mapstructure:"retry_budget"`
	MaxRetryWait time.Duration `mapstructure:"max_retry_wait"`
}

// Config is the root configuration for the transcript service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
}

// Load resolves the configuration. cfgFile may be empty, in which case only
// defaults and environment variables apply. A missing config file at the
// default search paths is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("transcriptd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/transcriptd")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults; only an explicitly
		// requested file must exist.
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks constraints between config values.
func (c *Config) Validate() error {
	if c.RateLimit.MinRate <= 0 {
		return fmt.Errorf("rate_limit.min_rate must be positive, got %d", c.RateLimit.MinRate)
	}
	if c.RateLimit.MaxRate < c.RateLimit.MinRate {
		return fmt.Errorf("rate_limit.max_rate (%d) must not be below min_rate (%d)",
			c.RateLimit.MaxRate, c.RateLimit.MinRate)
	}
	if c.RateLimit.InitialRate < c.RateLimit.MinRate || c.RateLimit.InitialRate > c.RateLimit.MaxRate {
		return fmt.Errorf("rate_limit.initial_rate (%d) must be within [%d, %d]",
			c.RateLimit.InitialRate, c.RateLimit.MinRate, c.RateLimit.MaxRate)
	}
	if c.Pool.MaxWorkers <= 0 {
		return fmt.Errorf("pool.max_workers must be positive, got %d", c.Pool.MaxWorkers)
	}
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Fetch.RetryBudget < 0 {
		return fmt.Errorf("fetch.retry_budget must not be negative, got %d", c.Fetch.RetryBudget)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	// Rate limiter defaults
	v.SetDefault("rate_limit.initial_rate", 30)
	v.SetDefault("rate_limit.min_rate", 5)
	v.SetDefault("rate_limit.max_rate", 50)
	v.SetDefault("rate_limit.window", "60s")

	// Cache defaults
	v.SetDefault("cache.ttl", "300s")
	v.SetDefault("cache.max_size", 1000)

	// Worker pool defaults
	v.SetDefault("pool.max_workers", 20)
	v.SetDefault("pool.dispatch_timeout", "10s")

	// Fetch retry defaults
	v.SetDefault("fetch.retry_budget", 2)
	v.SetDefault("fetch.max_retry_wait", "2s")
}

// LoggingSetup converts the logging section into a logging.Config.
func (c *Config) LoggingSetup() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Logging.Level)
	cfg.Pretty = c.Logging.Pretty
	return cfg
}

// RateLimiterConfig converts the rate limit section into a ratelimit.Config.
func (c *Config) RateLimiterConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.InitialRate = c.RateLimit.InitialRate
	cfg.MinRate = c.RateLimit.MinRate
	cfg.MaxRate = c.RateLimit.MaxRate
	cfg.Window = c.RateLimit.Window
	return cfg
}

// ResultCacheConfig converts the cache section into a cache.Config.
func (c *Config) ResultCacheConfig() cache.Config {
	return cache.Config{
		TTL:     c.Cache.TTL,
		MaxSize: c.Cache.MaxSize,
	}
}

// WorkerPoolConfig converts the pool section into a workerpool.Config.
func (c *Config) WorkerPoolConfig() workerpool.Config {
	return workerpool.Config{
		MaxWorkers:      c.Pool.MaxWorkers,
		DispatchTimeout: c.Pool.DispatchTimeout,
	}
}

// ServiceConfig assembles the full service.Config from the loaded settings.
func (c *Config) ServiceConfig() service.Config {
	return service.Config{
		RateLimit:    c.RateLimiterConfig(),
		Cache:        c.ResultCacheConfig(),
		Pool:         c.WorkerPoolConfig(),
		RetryBudget:  c.Fetch.RetryBudget,
		MaxRetryWait: c.Fetch.MaxRetryWait,
	}
}
