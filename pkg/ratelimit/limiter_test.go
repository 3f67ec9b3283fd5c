package ratelimit

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// testClock provides a controllable time source for deterministic tests.
type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time {
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// newTestLimiter builds a limiter with a fake clock and a sleep hook that
// advances the clock instead of blocking.
func newTestLimiter(cfg Config) (*Limiter, *testClock, *[]time.Duration) {
	clock := &testClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	sleeps := &[]time.Duration{}

	l := New(cfg, zerolog.Nop())
	l.now = clock.now
	l.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		clock.advance(d)
		return nil
	}
	return l, clock, sleeps
}

func TestAcquire_UnderLimitDoesNotWait(t *testing.T) {
	l, _, sleeps := newTestLimiter(DefaultConfig())

	for i := 0; i < 5; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}

	if len(*sleeps) != 0 {
		t.Errorf("Acquire() slept %d times under the limit, want 0", len(*sleeps))
	}
	if got := l.Stats().TotalRequests; got != 5 {
		t.Errorf("TotalRequests = %d, want 5", got)
	}
}

func TestAcquire_WaitsWhenWindowFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialRate = 3
	cfg.MinRate = 3
	cfg.MaxRate = 3
	l, clock, sleeps := newTestLimiter(cfg)

	// Fill the window.
	for i := 0; i < 3; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		clock.advance(time.Second)
	}

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if len(*sleeps) != 1 {
		t.Fatalf("Acquire() slept %d times with full window, want 1", len(*sleeps))
	}

	// Oldest timestamp is 3s old, so the base wait is window-3s plus up to
	// 10% jitter.
	base := cfg.Window - 3*time.Second
	got := (*sleeps)[0]
	if got < base || got > time.Duration(float64(base)*1.1)+time.Millisecond {
		t.Errorf("wait = %v, want within [%v, %v]", got, base, time.Duration(float64(base)*1.1))
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialRate = 1
	cfg.MinRate = 1
	cfg.MaxRate = 1
	l, _, _ := newTestLimiter(cfg)
	l.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := l.Acquire(context.Background()); err != context.Canceled {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}

func TestRateBounds_AlwaysHold(t *testing.T) {
	cfg := DefaultConfig()
	l, _, _ := newTestLimiter(cfg)

	// Alternate streaks of failures and successes and verify the invariant
	// at every observation point.
	check := func(step string) {
		rate := l.CurrentRate()
		if rate < cfg.MinRate || rate > cfg.MaxRate {
			t.Fatalf("%s: currentRate = %d, want within [%d, %d]", step, rate, cfg.MinRate, cfg.MaxRate)
		}
	}

	for i := 0; i < 20; i++ {
		l.RecordFailure()
		check("failure streak")
	}
	for i := 0; i < 50; i++ {
		l.RecordSuccess()
		check("success streak")
	}
	for i := 0; i < 10; i++ {
		l.RecordFailure()
		l.RecordSuccess()
		check("alternating")
	}
}

func TestRecordFailure_StreakHalvesRate(t *testing.T) {
	cfg := DefaultConfig()
	l, _, _ := newTestLimiter(cfg)

	for i := 0; i < cfg.MaxConsecutiveFailures-1; i++ {
		l.RecordFailure()
	}
	if got := l.CurrentRate(); got != cfg.InitialRate {
		t.Fatalf("currentRate before streak limit = %d, want %d", got, cfg.InitialRate)
	}

	l.RecordFailure()

	want := int(math.Round(float64(cfg.InitialRate) * 0.5))
	if want < cfg.MinRate {
		want = cfg.MinRate
	}
	if got := l.CurrentRate(); got != want {
		t.Errorf("currentRate after %d failures = %d, want %d", cfg.MaxConsecutiveFailures, got, want)
	}
}

func TestRecordFailure_HalvingFlooredAtMin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialRate = 6
	l, _, _ := newTestLimiter(cfg)

	for i := 0; i < cfg.MaxConsecutiveFailures+10; i++ {
		l.RecordFailure()
	}

	if got := l.CurrentRate(); got != cfg.MinRate {
		t.Errorf("currentRate after long failure streak = %d, want floor %d", got, cfg.MinRate)
	}
}

func TestRecordSuccess_ResetsFailureStreak(t *testing.T) {
	l, _, _ := newTestLimiter(DefaultConfig())

	l.RecordFailure()
	l.RecordFailure()
	l.RecordSuccess()

	s := l.Stats()
	if s.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d, want 0 after success", s.ConsecutiveFailures)
	}
	if s.ConsecutiveSuccesses != 1 {
		t.Errorf("ConsecutiveSuccesses = %d, want 1", s.ConsecutiveSuccesses)
	}
}

func TestAdjustRate(t *testing.T) {
	tests := []struct {
		name      string
		requests  int
		successes int
		wantRate  int
	}{
		{
			name:      "high success ratio raises rate by 20 percent",
			requests:  20,
			successes: 20,
			wantRate:  36, // 30 * 1.2
		},
		{
			name:      "good success ratio raises rate by 10 percent",
			requests:  20,
			successes: 18, // ratio 0.9
			wantRate:  33, // 30 * 1.1
		},
		{
			name:      "low success ratio lowers rate",
			requests:  20,
			successes: 4, // ratio 0.2
			wantRate:  21, // 30 * 0.7
		},
		{
			name:      "middling ratio leaves rate unchanged",
			requests:  20,
			successes: 13, // ratio 0.65
			wantRate:  30,
		},
		{
			name:      "no traffic leaves rate unchanged",
			requests:  0,
			successes: 0,
			wantRate:  30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, clock, _ := newTestLimiter(DefaultConfig())

			l.mu.Lock()
			for i := 0; i < tt.requests; i++ {
				l.requests = append(l.requests, clock.current)
			}
			for i := 0; i < tt.successes; i++ {
				l.successes = append(l.successes, clock.current)
			}
			clock.advance(time.Second)
			l.adjustRate(clock.current)
			l.mu.Unlock()

			if got := l.CurrentRate(); got != tt.wantRate {
				t.Errorf("currentRate = %d, want %d", got, tt.wantRate)
			}
		})
	}
}

func TestAdjustRate_CappedAtMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialRate = 48
	l, clock, _ := newTestLimiter(cfg)

	l.mu.Lock()
	for i := 0; i < 10; i++ {
		l.requests = append(l.requests, clock.current)
		l.successes = append(l.successes, clock.current)
	}
	clock.advance(time.Second)
	l.adjustRate(clock.current)
	l.mu.Unlock()

	if got := l.CurrentRate(); got != cfg.MaxRate {
		t.Errorf("currentRate = %d, want cap %d", got, cfg.MaxRate)
	}
}

func TestBackoff_GrowsWithFailureStreak(t *testing.T) {
	cfg := DefaultConfig()
	l, _, _ := newTestLimiter(cfg)

	// No failures: factor^0 = 1s base, jitter up to 10%.
	d0 := l.Backoff()
	if d0 < time.Second || d0 > 1100*time.Millisecond {
		t.Errorf("Backoff() with no failures = %v, want ~1s", d0)
	}

	l.RecordFailure()
	l.RecordFailure()

	// factor^2 = 2.25s base.
	base := time.Duration(math.Pow(cfg.BackoffFactor, 2) * float64(time.Second))
	d2 := l.Backoff()
	if d2 < base || d2 > time.Duration(float64(base)*1.1)+time.Millisecond {
		t.Errorf("Backoff() after 2 failures = %v, want within [%v, %v]", d2, base, time.Duration(float64(base)*1.1))
	}
}

func TestStats_Snapshot(t *testing.T) {
	l, _, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 4; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	l.RecordSuccess()
	l.RecordSuccess()
	l.RecordSuccess()
	l.RecordFailure()

	s := l.Stats()
	if s.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", s.TotalRequests)
	}
	if s.TotalSuccesses != 3 {
		t.Errorf("TotalSuccesses = %d, want 3", s.TotalSuccesses)
	}
	if s.TotalFailures != 1 {
		t.Errorf("TotalFailures = %d, want 1", s.TotalFailures)
	}
	if want := 0.75; s.SuccessRate != want {
		t.Errorf("SuccessRate = %v, want %v", s.SuccessRate, want)
	}
	if s.ConsecutiveFailures != 1 || s.ConsecutiveSuccesses != 0 {
		t.Errorf("streaks = (%d, %d), want (1, 0)", s.ConsecutiveFailures, s.ConsecutiveSuccesses)
	}
}

func TestAppendBounded_EvictsOldest(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var times []time.Time
	for i := 0; i < historyCap+5; i++ {
		times = appendBounded(times, base.Add(time.Duration(i)*time.Second))
	}

	if len(times) != historyCap {
		t.Fatalf("len = %d, want %d", len(times), historyCap)
	}
	if want := base.Add(5 * time.Second); !times[0].Equal(want) {
		t.Errorf("oldest = %v, want %v", times[0], want)
	}
	if want := base.Add(time.Duration(historyCap+4) * time.Second); !times[len(times)-1].Equal(want) {
		t.Errorf("newest = %v, want %v", times[len(times)-1], want)
	}
}
