// Package ratelimit implements an adaptive sliding-window admission
// controller. It tunes the allowed request rate from observed
// success/failure feedback and applies exponential backoff with jitter
// after failure streaks.
package ratelimit

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for admission control.
var (
	currentRateGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcript_rate_limit_current_rate",
		Help: "Current adaptive request rate (requests per window)",
	})

	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcript_rate_limit_waits_total",
		Help: "Total number of acquisitions that had to wait for admission",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transcript_rate_limit_wait_seconds",
		Help:    "Admission wait duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	rateAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcript_rate_limit_adjustments_total",
		Help: "Total rate adjustments by direction",
	}, []string{"direction"})
)

// historyCap bounds each timestamp window. The oldest entry is evicted
// when a window overflows.
const historyCap = 1000

// Thresholds for the ratio-based rate recomputation performed on every
// acquisition.
const (
	ratioRaiseFast = 0.95
	ratioRaiseSlow = 0.80
	ratioLower     = 0.50
)

// Config holds the limiter configuration.
type Config struct {
	// InitialRate is the request rate per window at startup.
	InitialRate int

	// MinRate and MaxRate bound the adaptive rate.
	MinRate int
	MaxRate int

	// Window is the sliding-window size for admission decisions.
	Window time.Duration

	// BackoffFactor is the base of the exponential backoff applied after
	// consecutive failures.
	BackoffFactor float64

	// RecoveryFactor is multiplied into the rate after a success streak.
	RecoveryFactor float64

	// MaxConsecutiveFailures is the streak length at which the rate is
	// halved.
	MaxConsecutiveFailures int
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() Config {
	return Config{
		InitialRate:            30,
		MinRate:                5,
		MaxRate:                50,
		Window:                 60 * time.Second,
		BackoffFactor:          1.5,
		RecoveryFactor:         0.8,
		MaxConsecutiveFailures: 5,
	}
}

// Limiter is a feedback-driven sliding-window admission controller.
// All methods are safe for concurrent use; admission waits happen outside
// the critical section so a blocked caller never stalls its siblings.
type Limiter struct {
	mu sync.Mutex

	cfg    Config
	logger zerolog.Logger

	requests  []time.Time
	successes []time.Time
	failures  []time.Time

	currentRate          int
	consecutiveFailures  int
	consecutiveSuccesses int

	totalRequests  int64
	totalSuccesses int64
	totalFailures  int64

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a limiter with the given configuration.
func New(cfg Config, logger zerolog.Logger) *Limiter {
	if cfg.InitialRate <= 0 {
		cfg = DefaultConfig()
	}
	l := &Limiter{
		cfg:         cfg,
		logger:      logger,
		currentRate: cfg.InitialRate,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	currentRateGauge.Set(float64(l.currentRate))
	return l
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

// Acquire blocks the caller until it is admitted under the current rate,
// then records a request timestamp. It returns early only when the context
// is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	l.adjustRate(now)

	wait := l.admissionWait(now)
	l.mu.Unlock()

	if wait > 0 {
		rateLimitWaitsTotal.Inc()
		rateLimitWaitSeconds.Observe(wait.Seconds())
		l.logger.Debug().
			Dur("wait", wait).
			Int("current_rate", l.CurrentRate()).
			Msg("Waiting for admission")

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.requests = appendBounded(l.requests, l.now())
	l.totalRequests++
	l.mu.Unlock()

	return nil
}

// admissionWait computes how long the caller must wait before being
// admitted. Caller must hold the mutex.
func (l *Limiter) admissionWait(now time.Time) time.Duration {
	cutoff := now.Add(-l.cfg.Window)
	inWindow := l.requests[firstIndexAfter(l.requests, cutoff):]
	if len(inWindow) < l.currentRate {
		return 0
	}

	oldest := inWindow[0]
	wait := l.cfg.Window - now.Sub(oldest)
	if wait <= 0 {
		return 0
	}

	wait += jitter(wait)
	if l.consecutiveFailures > 0 {
		wait = time.Duration(float64(wait) * l.backoffMultiplier())
	}
	return wait
}

// adjustRate recomputes the current rate from the recent success ratio.
// Caller must hold the mutex.
func (l *Limiter) adjustRate(now time.Time) {
	cutoff := now.Add(-l.cfg.Window)
	recentRequests := len(l.requests) - firstIndexAfter(l.requests, cutoff)
	recentSuccesses := len(l.successes) - firstIndexAfter(l.successes, cutoff)

	denom := recentRequests
	if denom < 1 {
		denom = 1
	}
	ratio := float64(recentSuccesses) / float64(denom)

	previous := l.currentRate
	switch {
	case ratio > ratioRaiseFast:
		l.setRate(int(float64(l.currentRate) * 1.2))
	case ratio > ratioRaiseSlow:
		l.setRate(int(float64(l.currentRate) * 1.1))
	case ratio < ratioLower:
		l.setRate(int(float64(l.currentRate) * 0.7))
	}

	if l.currentRate != previous {
		direction := "up"
		if l.currentRate < previous {
			direction = "down"
		}
		rateAdjustmentsTotal.WithLabelValues(direction).Inc()
		l.logger.Debug().
			Float64("success_ratio", ratio).
			Int("previous_rate", previous).
			Int("current_rate", l.currentRate).
			Msg("Adjusted request rate")
	}
}

// setRate clamps and applies a new rate. Caller must hold the mutex.
func (l *Limiter) setRate(rate int) {
	if rate < l.cfg.MinRate {
		rate = l.cfg.MinRate
	}
	if rate > l.cfg.MaxRate {
		rate = l.cfg.MaxRate
	}
	l.currentRate = rate
	currentRateGauge.Set(float64(rate))
}

// RecordSuccess registers a successful dispatch. A streak of three or more
// successes multiplies the rate by the recovery factor.
func (l *Limiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successes = appendBounded(l.successes, l.now())
	l.consecutiveSuccesses++
	l.consecutiveFailures = 0
	l.totalSuccesses++

	if l.consecutiveSuccesses >= 3 {
		l.setRate(int(float64(l.currentRate) * l.cfg.RecoveryFactor))
	}
}

// RecordFailure registers a failed dispatch. Reaching the configured
// failure streak halves the rate, floored at the minimum.
func (l *Limiter) RecordFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures = appendBounded(l.failures, l.now())
	l.consecutiveFailures++
	l.consecutiveSuccesses = 0
	l.totalFailures++

	if l.consecutiveFailures >= l.cfg.MaxConsecutiveFailures {
		previous := l.currentRate
		l.setRate(int(math.Round(float64(l.currentRate) * 0.5)))
		l.logger.Warn().
			Int("consecutive_failures", l.consecutiveFailures).
			Int("previous_rate", previous).
			Int("current_rate", l.currentRate).
			Msg("Failure streak - rate halved")
	}
}

// Backoff returns the exponential backoff delay for the current failure
// streak, with uniform jitter in [0, 0.1*delay].
func (l *Limiter) Backoff() time.Duration {
	l.mu.Lock()
	failures := l.consecutiveFailures
	l.mu.Unlock()

	delay := time.Duration(math.Pow(l.cfg.BackoffFactor, float64(failures)) * float64(time.Second))
	return delay + jitter(delay)
}

// CurrentRate returns the current adaptive rate.
func (l *Limiter) CurrentRate() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentRate
}

// backoffMultiplier is the dimensionless backoff value used to stretch
// admission waits during failure streaks. Caller must hold the mutex.
func (l *Limiter) backoffMultiplier() float64 {
	m := math.Pow(l.cfg.BackoffFactor, float64(l.consecutiveFailures))
	return m * (1 + rand.Float64()*0.1)
}

// jitter returns a uniform random duration in [0, 0.1*d].
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Float64() * 0.1 * float64(d))
}

// appendBounded appends t, evicting the oldest entry when the window is at
// capacity.
func appendBounded(times []time.Time, t time.Time) []time.Time {
	if len(times) >= historyCap {
		copy(times, times[1:])
		times[len(times)-1] = t
		return times
	}
	return append(times, t)
}

// firstIndexAfter returns the index of the first timestamp newer than
// cutoff. Timestamps are appended in order, so everything from that index
// on is inside the window.
func firstIndexAfter(times []time.Time, cutoff time.Time) int {
	for i, t := range times {
		if t.After(cutoff) {
			return i
		}
	}
	return len(times)
}
