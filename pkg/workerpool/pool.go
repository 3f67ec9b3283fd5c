// Package workerpool provides a bounded set of execution slots for running
// blocking fetch operations without stalling concurrent orchestration.
package workerpool

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

var (
	busyWorkersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcript_pool_busy_workers",
		Help: "Number of worker slots currently executing a fetch",
	})

	dispatchTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcript_pool_dispatch_timeouts_total",
		Help: "Total number of dispatches that exceeded their deadline",
	})

	dispatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transcript_pool_dispatch_duration_seconds",
		Help:    "Dispatch duration in seconds, including slot wait",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
	})
)

// ErrTimeout is returned when a dispatched call does not complete within
// its deadline.
var ErrTimeout = errors.New("dispatch timed out")

// Config holds the pool configuration.
type Config struct {
	// MaxWorkers is the number of concurrent execution slots.
	MaxWorkers int

	// DispatchTimeout is the per-call deadline.
	DispatchTimeout time.Duration
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:      20,
		DispatchTimeout: 10 * time.Second,
	}
}

// Pool is a bounded-concurrency dispatch surface. Once all slots are busy,
// new dispatches queue until a slot frees; this is the hard backpressure
// mechanism of the pipeline.
type Pool struct {
	cfg    Config
	slots  *semaphore.Weighted
	logger zerolog.Logger
}

// New creates a pool with the given configuration.
func New(cfg Config, logger zerolog.Logger) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultConfig().MaxWorkers
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = DefaultConfig().DispatchTimeout
	}
	return &Pool{
		cfg:    cfg,
		slots:  semaphore.NewWeighted(int64(cfg.MaxWorkers)),
		logger: logger,
	}
}

// Timeout returns the per-call deadline.
func (p *Pool) Timeout() time.Duration {
	return p.cfg.DispatchTimeout
}

// Close waits for in-flight work to drain, bounded by the context
// deadline. It does not abort in-flight calls.
func (p *Pool) Close(ctx context.Context) error {
	if err := p.slots.Acquire(ctx, int64(p.cfg.MaxWorkers)); err != nil {
		return err
	}
	p.slots.Release(int64(p.cfg.MaxWorkers))
	return nil
}

// Dispatch runs fn on a free slot of p and waits up to the pool's timeout
// for it to complete. On timeout the caller receives ErrTimeout while the
// underlying call is abandoned: it is not guaranteed to stop executing and
// keeps its slot occupied until it returns on its own. Callers must treat
// abandoned work as eventually consistent.
func Dispatch[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) T) (T, error) {
	var zero T

	start := time.Now()
	defer func() {
		dispatchDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.DispatchTimeout)

	done := make(chan T, 1)
	go func() {
		defer p.slots.Release(1)
		defer cancel()
		busyWorkersGauge.Inc()
		defer busyWorkersGauge.Dec()

		done <- fn(callCtx)
	}()

	select {
	case out := <-done:
		return out, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		dispatchTimeoutsTotal.Inc()
		p.logger.Warn().
			Dur("timeout", p.cfg.DispatchTimeout).
			Msg("Dispatch deadline exceeded - abandoning call")
		return zero, ErrTimeout
	}
}
