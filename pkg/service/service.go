// Package service wires the admission controller, result cache, worker
// pool, and fetcher into the adaptive concurrent fetch pipeline, and fans
// batches of videos out across it.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ytfetch/transcript-service/pkg/cache"
	"github.com/ytfetch/transcript-service/pkg/ratelimit"
	"github.com/ytfetch/transcript-service/pkg/transcript"
	"github.com/ytfetch/transcript-service/pkg/workerpool"
)

// MaxBatchSize is the per-request cap on batch items, enforced at the
// service boundary.
const MaxBatchSize = 50

// Config holds the service configuration.
type Config struct {
	// RateLimit configures the admission controller.
	RateLimit ratelimit.Config

	// Cache configures the result cache.
	Cache cache.Config

	// Pool configures the dispatch worker pool.
	Pool workerpool.Config

	// RetryBudget is the number of additional attempts for transient
	// fetch errors (total attempts = RetryBudget + 1).
	RetryBudget int

	// MaxRetryWait caps the backoff between retry attempts.
	MaxRetryWait time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		RateLimit:    ratelimit.DefaultConfig(),
		Cache:        cache.DefaultConfig(),
		Pool:         workerpool.DefaultConfig(),
		RetryBudget:  2,
		MaxRetryWait: 2 * time.Second,
	}
}

// Service is the transcript fetch orchestrator. One instance owns the
// shared limiter, cache, and pool for the lifetime of the process; every
// fetch call reads and mutates them.
type Service struct {
	fetcher transcript.Fetcher
	limiter *ratelimit.Limiter
	cache   *cache.Cache
	pool    *workerpool.Pool
	cfg     Config
	logger  zerolog.Logger

	// Injectable for deterministic retry tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a service around a fetcher capability.
func New(fetcher transcript.Fetcher, cfg Config) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.RetryBudget < 0 {
		return nil, fmt.Errorf("retry budget must be >= 0 (got %d)", cfg.RetryBudget)
	}
	if cfg.MaxRetryWait <= 0 {
		cfg.MaxRetryWait = DefaultConfig().MaxRetryWait
	}

	logger := log.With().Str("component", "transcript-service").Logger()

	return &Service{
		fetcher: fetcher,
		limiter: ratelimit.New(cfg.RateLimit, logger),
		cache:   cache.New(cfg.Cache),
		pool:    workerpool.New(cfg.Pool, logger),
		cfg:     cfg,
		logger:  logger,
		sleep:   sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats returns a snapshot of the admission controller counters.
func (s *Service) Stats() ratelimit.Stats {
	return s.limiter.Stats()
}

// CacheLen returns the current number of cached results.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// Close drains the worker pool, bounded by the context deadline. In-flight
// fetches are allowed to finish; nothing is forcibly aborted.
func (s *Service) Close(ctx context.Context) error {
	s.logger.Info().Msg("Draining worker pool")
	if err := s.pool.Close(ctx); err != nil {
		return fmt.Errorf("drain worker pool: %w", err)
	}
	return nil
}
