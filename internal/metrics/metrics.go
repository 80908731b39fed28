// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package metrics exposes Prometheus instrumentation for the job pipeline:
// submit throughput, lifecycle transitions, scoring latency, cache
// efficiency and API latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job pipeline

	JobsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_jobs_submitted_total",
			Help: "Total jobs accepted and published to a mode queue",
		},
		[]string{"mode"},
	)

	JobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_job_transitions_total",
			Help: "Total job lifecycle state transitions",
		},
		[]string{"mode", "state"},
	)

	QueuePublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_queue_publish_failures_total",
			Help: "Total failed publishes to the job broker",
		},
		[]string{"mode"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviematch_scoring_duration_seconds",
			Help:    "Duration of one scoring+fallback+persist execution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode", "outcome"}, // outcome: completed, failed
	)

	ScoringRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_scoring_retries_total",
			Help: "Total scoring attempts that failed transiently and were retried",
		},
		[]string{"mode"},
	)

	// Result cache

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviematch_result_cache_hits_total",
			Help: "Total submit calls answered from the result cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviematch_result_cache_misses_total",
			Help: "Total submit calls that missed the result cache",
		},
	)

	// HTTP API

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviematch_api_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviematch_api_active_requests",
			Help: "Number of HTTP requests currently in flight",
		},
	)
)

// RecordJobSubmitted increments the submit counter for a mode.
func RecordJobSubmitted(mode string) {
	JobsSubmitted.WithLabelValues(mode).Inc()
}

// RecordJobTransition increments the transition counter.
func RecordJobTransition(mode, state string) {
	JobTransitions.WithLabelValues(mode, state).Inc()
}

// RecordQueuePublishFailure increments the publish failure counter.
func RecordQueuePublishFailure(mode string) {
	QueuePublishFailures.WithLabelValues(mode).Inc()
}

// RecordScoring observes one complete worker execution.
func RecordScoring(mode string, duration time.Duration, succeeded bool) {
	outcome := "completed"
	if !succeeded {
		outcome = "failed"
	}
	ScoringDuration.WithLabelValues(mode, outcome).Observe(duration.Seconds())
}

// RecordScoringRetry increments the retry counter for a mode.
func RecordScoringRetry(mode string) {
	ScoringRetries.WithLabelValues(mode).Inc()
}

// RecordCacheLookup increments the hit or miss counter.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordAPIRequest observes one HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
