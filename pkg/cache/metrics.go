package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks lookups served from the cache.
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_cache_hits_total",
			Help: "Total number of transcript cache hits",
		},
	)

	// cacheMisses tracks lookups that fell through to a fetch.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcript_cache_misses_total",
			Help: "Total number of transcript cache misses",
		},
	)

	// cacheSizeGauge tracks the current entry count.
	cacheSizeGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "transcript_cache_entries",
			Help: "Current number of cached transcript results",
		},
	)

	// cacheEvictionsTotal tracks evictions by cause.
	cacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_cache_evictions_total",
			Help: "Total number of cache evictions by reason",
		},
		[]string{"reason"}, // "expired", "capacity"
	)
)
