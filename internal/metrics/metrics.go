// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Recommendation engine operations and fallback activity
// - TMDB upstream calls (latency, errors, circuit breaker)
// - Response and metadata cache efficiency
// - Database query performance (DuckDB)
// - API endpoint latency and throughput

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics
	EngineOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_operation_duration_seconds",
			Help:    "Duration of recommendation engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "similar", "discover", "for_user", "hybrid", "mood", "popular"
	)

	EngineResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_results_returned",
			Help:    "Number of items returned per engine operation",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
		[]string{"operation"},
	)

	EngineFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_fallbacks_total",
			Help: "Total number of times an operation degraded to the fallback chain",
		},
		[]string{"operation", "reason"}, // reason: "ranker_unavailable", "collaborator", "empty"
	)

	EngineRankerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_ranker_errors_total",
			Help: "Total number of ranker errors absorbed by the engine",
		},
		[]string{"ranker"},
	)

	// TMDB Upstream Metrics
	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "Duration of TMDB API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"}, // "popular", "genres", "discover", "details", "keywords"
	)

	TMDBRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_request_errors_total",
			Help: "Total number of failed TMDB API calls",
		},
		[]string{"endpoint", "error_type"}, // error_type: "http", "decode", "breaker_open", "rate_limit"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "tmdb", "response"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	EngineCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_response_cache_entries",
			Help: "Current number of entries in the engine response cache",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Rating Ingestion Metrics
	RatingsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_appended_total",
			Help: "Total number of rating events appended to the store",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordEngineOperation records latency and result count for an engine operation
func RecordEngineOperation(operation string, duration time.Duration, results int) {
	EngineOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	EngineResultsReturned.WithLabelValues(operation).Observe(float64(results))
}

// RecordEngineFallback records an operation degrading to the fallback chain
func RecordEngineFallback(operation, reason string) {
	EngineFallbacks.WithLabelValues(operation, reason).Inc()
}

// RecordRankerError records a ranker error absorbed by the engine
func RecordRankerError(ranker string) {
	EngineRankerErrors.WithLabelValues(ranker).Inc()
}

// RecordTMDBRequest records a TMDB API call metric
func RecordTMDBRequest(endpoint string, duration time.Duration, errorType string) {
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if errorType != "" {
		TMDBRequestErrors.WithLabelValues(endpoint, errorType).Inc()
	}
}

// RecordCacheHit records a cache hit for the given cache type
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the given cache type
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the build identity once at startup
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
