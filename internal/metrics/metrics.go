// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync attempt metrics
	SyncAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_sync_attempts_total",
			Help: "Total number of sync attempts by priority and outcome",
		},
		[]string{"priority", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksync_sync_duration_seconds",
			Help:    "Duration of a full sync attempt in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"priority"},
	)

	SyncErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_sync_errors_total",
			Help: "Total number of failed sync attempts by error category",
		},
		[]string{"category"},
	)

	SyncPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksync_sync_phase_duration_seconds",
			Help:    "Duration of a single sync phase (push, pull) in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_operations_total",
			Help: "Operations and entities moved by sync phases",
		},
		[]string{"direction"}, // "pushed", "pulled", "rejected", "conflicted", "resolved"
	)

	SyncLastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sync",
		},
	)

	// Queue metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksync_queue_depth",
			Help: "Current number of pending operations",
		},
	)

	QueueConsolidatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasksync_queue_consolidated_total",
			Help: "Total number of pending operations removed by consolidation",
		},
	)

	// Retry / backoff metrics
	ConsecutiveFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksync_consecutive_failures",
			Help: "Current number of consecutive failed sync attempts",
		},
	)

	// Coordinator metrics
	CoordinatorQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_coordinator_queued_total",
			Help: "Sync requests parked behind a running sync",
		},
		[]string{"priority"},
	)

	// Token metrics
	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_token_refresh_total",
			Help: "Token refresh attempts by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: "proactive", "reactive"
	)

	// Health metrics
	HealthCheckStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasksync_health_status",
			Help: "Result of the last health check (1 = healthy, 0 = unhealthy)",
		},
	)

	// Control API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksync_api_requests_total",
			Help: "Total number of control API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksync_api_request_duration_seconds",
			Help:    "Control API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordSyncAttempt records the outcome of one sync attempt.
func RecordSyncAttempt(priority, status, category string, duration time.Duration) {
	SyncAttemptsTotal.WithLabelValues(priority, status).Inc()
	SyncDuration.WithLabelValues(priority).Observe(duration.Seconds())
	if category != "" {
		SyncErrorsTotal.WithLabelValues(category).Inc()
	}
}

// RecordSyncSuccess stamps the time of the last successful sync.
func RecordSyncSuccess(at time.Time) {
	SyncLastSuccessTimestamp.Set(float64(at.Unix()))
}

// RecordPhase records the duration of a push or pull phase.
func RecordPhase(phase string, duration time.Duration) {
	SyncPhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordOperations adds n to the counter of the given direction. Zero is a
// no-op so callers can pass raw lengths.
func RecordOperations(direction string, n int) {
	if n <= 0 {
		return
	}
	SyncOperationsTotal.WithLabelValues(direction).Add(float64(n))
}

// SetQueueDepth updates the pending operation gauge.
func SetQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}

// RecordConsolidated counts operations removed by the optimizer.
func RecordConsolidated(n int) {
	if n <= 0 {
		return
	}
	QueueConsolidatedTotal.Add(float64(n))
}

// SetConsecutiveFailures updates the backoff gauge.
func SetConsecutiveFailures(n int) {
	ConsecutiveFailures.Set(float64(n))
}

// RecordCoordinatorQueued counts a request parked by the coordinator.
func RecordCoordinatorQueued(priority string) {
	CoordinatorQueuedTotal.WithLabelValues(priority).Inc()
}

// RecordTokenRefresh counts a token refresh attempt.
func RecordTokenRefresh(trigger string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	TokenRefreshTotal.WithLabelValues(trigger, result).Inc()
}

// SetHealthy records the result of the last health check.
func SetHealthy(healthy bool) {
	if healthy {
		HealthCheckStatus.Set(1)
		return
	}
	HealthCheckStatus.Set(0)
}

// RecordAPIRequest records one control API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
