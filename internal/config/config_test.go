package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.InitialRate != 30 {
		t.Errorf("Expected initial rate 30, got %d", cfg.RateLimit.InitialRate)
	}
	if cfg.RateLimit.MinRate != 5 || cfg.RateLimit.MaxRate != 50 {
		t.Errorf("Expected rate bounds [5, 50], got [%d, %d]", cfg.RateLimit.MinRate, cfg.RateLimit.MaxRate)
	}
	if cfg.RateLimit.Window != 60*time.Second {
		t.Errorf("Expected 60s window, got %v", cfg.RateLimit.Window)
	}
	if cfg.Cache.TTL != 300*time.Second {
		t.Errorf("Expected 300s cache TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.MaxSize != 1000 {
		t.Errorf("Expected cache max size 1000, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Pool.MaxWorkers != 20 {
		t.Errorf("Expected 20 max workers, got %d", cfg.Pool.MaxWorkers)
	}
	if cfg.Pool.DispatchTimeout != 10*time.Second {
		t.Errorf("Expected 10s dispatch timeout, got %v", cfg.Pool.DispatchTimeout)
	}
	if cfg.Fetch.RetryBudget != 2 {
		t.Errorf("Expected retry budget 2, got %d", cfg.Fetch.RetryBudget)
	}
	if cfg.Fetch.MaxRetryWait != 2*time.Second {
		t.Errorf("Expected 2s max retry wait, got %v", cfg.Fetch.MaxRetryWait)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRANSCRIPTD_SERVER_PORT", "9999")
	t.Setenv("TRANSCRIPTD_RATE_LIMIT_INITIAL_RATE", "10")
	t.Setenv("TRANSCRIPTD_POOL_MAX_WORKERS", "4")
	t.Setenv("TRANSCRIPTD_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from env, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.InitialRate != 10 {
		t.Errorf("Expected initial rate 10 from env, got %d", cfg.RateLimit.InitialRate)
	}
	if cfg.Pool.MaxWorkers != 4 {
		t.Errorf("Expected 4 workers from env, got %d", cfg.Pool.MaxWorkers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug log level from env, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcriptd.yaml")
	content := []byte(`
server:
  port: 8080
rate_limit:
  initial_rate: 20
  window: 30s
cache:
  ttl: 60s
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080 from file, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.InitialRate != 20 {
		t.Errorf("Expected initial rate 20 from file, got %d", cfg.RateLimit.InitialRate)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("Expected 30s window from file, got %v", cfg.RateLimit.Window)
	}
	if cfg.Cache.TTL != 60*time.Second {
		t.Errorf("Expected 60s TTL from file, got %v", cfg.Cache.TTL)
	}
	// Untouched sections keep defaults
	if cfg.Pool.MaxWorkers != 20 {
		t.Errorf("Expected default 20 workers, got %d", cfg.Pool.MaxWorkers)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults_valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero_min_rate",
			mutate:  func(c *Config) { c.RateLimit.MinRate = 0 },
			wantErr: true,
		},
		{
			name:    "max_below_min",
			mutate:  func(c *Config) { c.RateLimit.MaxRate = 3 },
			wantErr: true,
		},
		{
			name:    "initial_out_of_bounds",
			mutate:  func(c *Config) { c.RateLimit.InitialRate = 100 },
			wantErr: true,
		},
		{
			name:    "zero_workers",
			mutate:  func(c *Config) { c.Pool.MaxWorkers = 0 },
			wantErr: true,
		},
		{
			name:    "zero_cache_size",
			mutate:  func(c *Config) { c.Cache.MaxSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative_retry_budget",
			mutate:  func(c *Config) { c.Fetch.RetryBudget = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServiceConfigAssembly(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	svcCfg := cfg.ServiceConfig()

	if svcCfg.RateLimit.InitialRate != cfg.RateLimit.InitialRate {
		t.Errorf("Rate limit not carried into service config")
	}
	if svcCfg.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("Cache TTL not carried into service config")
	}
	if svcCfg.Pool.MaxWorkers != cfg.Pool.MaxWorkers {
		t.Errorf("Pool size not carried into service config")
	}
	if svcCfg.RetryBudget != 2 {
		t.Errorf("Expected retry budget 2, got %d", svcCfg.RetryBudget)
	}
}

func TestAddr(t *testing.T) {
	sc := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := sc.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8000")
	}
}
