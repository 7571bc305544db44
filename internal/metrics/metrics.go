// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package metrics provides Prometheus instrumentation for the API surface,
// the SQLite store, and the ranking core.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

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

	// Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of SQLite queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of SQLite query errors",
		},
		[]string{"operation"},
	)

	HistoryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_rejections_total",
			Help: "Total number of history fetches rejected before the database",
		},
		[]string{"cause"}, // "budget", "breaker"
	)

	// Ranking Metrics
	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Duration of recommendation ranking in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"}, // "hybrid", "similar", "hidden_gems", "time_aware", "onboarding"
	)

	RankingResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_result_count",
			Help:    "Number of candidates returned per ranking request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"strategy"},
	)

	ResultCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_result_cache_lookups_total",
			Help: "Total number of ranking result cache lookups",
		},
		[]string{"outcome"}, // "hit", "miss"
	)

	ColdStartServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_cold_start_served_total",
			Help: "Total number of requests served by the cold start policy",
		},
	)

	// Artifact Metrics
	ArtifactItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artifact_items",
			Help: "Number of items loaded per recommendation artifact",
		},
		[]string{"artifact"}, // "catalog", "similarity", "estimator"
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreQuery records one store operation's outcome.
func RecordStoreQuery(operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordRanking records one ranking request's outcome.
func RecordRanking(strategy string, results int, duration time.Duration) {
	RankingDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	RankingResults.WithLabelValues(strategy).Observe(float64(results))
}

// SetArtifactSizes publishes the loaded artifact sizes once at startup.
func SetArtifactSizes(catalogItems, similarityItems, estimatorItems int) {
	ArtifactItems.WithLabelValues("catalog").Set(float64(catalogItems))
	ArtifactItems.WithLabelValues("similarity").Set(float64(similarityItems))
	ArtifactItems.WithLabelValues("estimator").Set(float64(estimatorItems))
}
