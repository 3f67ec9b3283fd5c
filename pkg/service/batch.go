package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ytfetch/transcript-service/pkg/transcript"
)

var (
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcript_batches_total",
		Help: "Total batch runs",
	})

	batchSizeHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transcript_batch_size",
		Help:    "Number of videos per batch run",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
)

// Summary aggregates the outcome of one batch run.
type Summary struct {
	TotalProcessed int `json:"total_processed"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`

	// AverageProcessingTime is the mean per-video processing time over
	// successful fetches, in seconds.
	AverageProcessingTime float64 `json:"average_processing_time"`

	// TotalProcessingTime is the wall-clock duration of the whole batch,
	// in seconds.
	TotalProcessingTime float64 `json:"total_processing_time"`
}

// Batch fetches transcripts for all videos concurrently. The returned
// slice preserves the order of videoIDs exactly; one video's failure never
// aborts or delays its siblings. A panic escaping an individual run is
// converted into an error result keyed to that video.
func (s *Service) Batch(ctx context.Context, videoIDs []string, language string) ([]*transcript.Result, Summary) {
	start := time.Now()
	batchesTotal.Inc()
	batchSizeHistogram.Observe(float64(len(videoIDs)))

	s.logger.Info().
		Int("videos", len(videoIDs)).
		Str("language", language).
		Msg("Starting batch fetch")

	results := make([]*transcript.Result, len(videoIDs))

	var wg sync.WaitGroup
	for i, videoID := range videoIDs {
		wg.Add(1)
		go func(i int, videoID string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error().
						Str("video_id", videoID).
						Interface("panic", r).
						Msg("Fetch panicked - converted to error result")
					results[i] = transcript.ErrorResult(videoID, fmt.Sprintf("unexpected: %v", r))
				}
			}()

			results[i] = s.Fetch(ctx, videoID, language)
		}(i, videoID)
	}
	wg.Wait()

	summary := summarize(results)
	summary.TotalProcessingTime = time.Since(start).Seconds()

	s.logger.Info().
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Float64("total_seconds", summary.TotalProcessingTime).
		Msg("Batch fetch complete")

	return results, summary
}

// summarize derives the aggregate counts from a result slice.
func summarize(results []*transcript.Result) Summary {
	summary := Summary{TotalProcessed: len(results)}

	var successTime float64
	for _, r := range results {
		if r.IsSuccess() {
			summary.Successful++
			successTime += r.ProcessingTime
		} else {
			summary.Failed++
		}
	}
	if summary.Successful > 0 {
		summary.AverageProcessingTime = successTime / float64(summary.Successful)
	}
	return summary
}
