// Package metrics provides the centralized Prometheus metrics registry for
// the transcript service. All metrics are defined in their respective packages
// (service, fetcher support packages, cache, ratelimit, workerpool) to
// maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the transcript service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - transcript_rate_limit_current_rate (Gauge): Current adaptive request rate per window
//   - transcript_rate_limit_waits_total (Counter): Acquisitions that waited for admission
//   - transcript_rate_limit_wait_seconds (Histogram): Admission wait duration
//   - transcript_rate_limit_adjustments_total{direction} (Counter): Rate adjustments (up, down)
//
// Cache Metrics (pkg/cache):
//   - transcript_cache_hits_total (Counter): Cache hits
//   - transcript_cache_misses_total (Counter): Cache misses
//   - transcript_cache_entries (Gauge): Current number of cached results
//   - transcript_cache_evictions_total{reason} (Counter): Evictions (expired, capacity)
//
// Worker Pool Metrics (pkg/workerpool):
//   - transcript_pool_busy_workers (Gauge): Worker slots currently executing a fetch
//   - transcript_pool_dispatch_timeouts_total (Counter): Dispatches that exceeded their deadline
//
// Fetch Metrics (pkg/service):
//   - transcript_fetches_total{outcome} (Counter): Fetches by outcome (success, no_transcript, error, cached)
//   - transcript_fetch_duration_seconds{outcome} (Histogram): Fetch duration by outcome
//   - transcript_fetch_retries_total (Counter): Retry attempts for transient errors
//
// Batch Metrics (pkg/service):
//   - transcript_batches_total (Counter): Total batch runs
//   - transcript_batch_size (Histogram): Number of videos per batch
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(transcript_cache_hits_total[5m])) /
//   (sum(rate(transcript_cache_hits_total[5m])) + sum(rate(transcript_cache_misses_total[5m])))
//
//   # Fetch Error Rate
//   rate(transcript_fetches_total{outcome="error"}[5m])
//
//   # P95 Fetch Latency
//   histogram_quantile(0.95, rate(transcript_fetch_duration_seconds_bucket[5m]))
//
//   # Rate Limiter Pressure
//   rate(transcript_rate_limit_waits_total[5m])
