package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ytfetch/transcript-service/pkg/cache"
	"github.com/ytfetch/transcript-service/pkg/transcript"
	"github.com/ytfetch/transcript-service/pkg/workerpool"
)

// Prometheus metrics for the fetch pipeline.
var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcript_fetches_total",
		Help: "Total transcript fetches by outcome",
	}, []string{"outcome"}) // "success", "no_transcript", "error", "cached"

	fetchDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transcript_fetch_duration_seconds",
		Help:    "End-to-end fetch duration in seconds by outcome",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"outcome"})

	fetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcript_fetch_retries_total",
		Help: "Total retry attempts for transient fetch errors",
	})
)

// Fetch runs the per-video pipeline: cache lookup, rate-limit admission,
// dispatch through the worker pool, and bounded retry of transient
// failures. It never returns nil and never propagates an error; every
// failure is shaped into a Result.
func (s *Service) Fetch(ctx context.Context, videoID, language string) *transcript.Result {
	start := time.Now()
	key := cache.Key{VideoID: videoID, Language: language}

	if cached, ok := s.cache.Get(key); ok {
		result := *cached
		result.ProcessingTime = time.Since(start).Seconds()
		fetchesTotal.WithLabelValues("cached").Inc()
		s.logger.Debug().
			Str("video_id", videoID).
			Str("language", language).
			Msg("Served from cache")
		return &result
	}

	retries := s.cfg.RetryBudget
	for attempt := 1; ; attempt++ {
		if err := s.limiter.Acquire(ctx); err != nil {
			return s.finish(start, transcript.ErrorResult(videoID, fmt.Sprintf("unexpected: %v", err)))
		}

		result, err := workerpool.Dispatch(ctx, s.pool, func(ctx context.Context) *transcript.Result {
			return s.fetcher.Fetch(ctx, videoID, language)
		})

		if err != nil {
			// Timeouts and dispatch faults are transport-level failures.
			s.limiter.RecordFailure()

			if errors.Is(err, workerpool.ErrTimeout) {
				s.logger.Warn().
					Str("video_id", videoID).
					Int("attempt", attempt).
					Msg("Fetch timed out")
				return s.finish(start, transcript.ErrorResult(videoID,
					fmt.Sprintf("timeout: fetch did not complete within %s", s.pool.Timeout())))
			}

			return s.finish(start, transcript.ErrorResult(videoID, fmt.Sprintf("unexpected: %v", err)))
		}

		// The dispatch completed, so the transport is healthy; this counts
		// as a limiter success even when the content outcome is an error.
		// The admission feedback loop deliberately tunes on transport
		// health, not content availability.
		s.limiter.RecordSuccess()

		if result.Status == transcript.StatusError && transcript.IsTransient(result.Error) && retries > 0 {
			wait := s.limiter.Backoff()
			if wait > s.cfg.MaxRetryWait {
				wait = s.cfg.MaxRetryWait
			}

			s.logger.Info().
				Str("video_id", videoID).
				Int("attempt", attempt).
				Int("retries_left", retries).
				Dur("wait", wait).
				Str("error", result.Error).
				Msg("Transient fetch error - retrying")
			fetchRetriesTotal.Inc()

			if err := s.sleep(ctx, wait); err != nil {
				return s.finish(start, transcript.ErrorResult(videoID, fmt.Sprintf("unexpected: %v", err)))
			}
			retries--
			continue
		}

		if result.IsSuccess() {
			snapshot := *result
			s.cache.Put(key, &snapshot)
		}

		return s.finish(start, result)
	}
}

// finish back-fills the processing time and records outcome metrics.
func (s *Service) finish(start time.Time, result *transcript.Result) *transcript.Result {
	result.ProcessingTime = time.Since(start).Seconds()

	outcome := string(result.Status)
	fetchesTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.WithLabelValues(outcome).Observe(result.ProcessingTime)

	return result
}
