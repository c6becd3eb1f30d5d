// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/models"
)

const (
	// DefaultHealthCheckInterval is how often the monitor runs on its own.
	DefaultHealthCheckInterval = 5 * time.Minute

	// StaleOperationRetries is the retry count from which a queued operation
	// is reported as stuck.
	StaleOperationRetries = 3

	// StaleSyncAge is how old lastSyncAt may get while operations are queued.
	StaleSyncAge = 24 * time.Hour

	pingTimeout = 10 * time.Second
)

// HealthMonitor periodically inspects the sync subsystem. It never runs a
// sync itself. Besides a proactive token refresh it only reports
// reachability changes to the registered listener.
type HealthMonitor struct {
	config   *ConfigStore
	queue    *OperationQueue
	tokens   *TokenManager
	adapter  adapter.ServerAdapter
	interval time.Duration
	now      func() time.Time

	job job

	mu        sync.RWMutex
	last      *models.HealthReport
	reachable *bool

	connectivity connectivityListener

	logger *logger.Logger
}

// NewHealthMonitor creates a monitor. A non-positive interval falls back to
// DefaultHealthCheckInterval.
func NewHealthMonitor(config *ConfigStore, queue *OperationQueue, tokens *TokenManager, serverAdapter adapter.ServerAdapter, interval time.Duration, logger *logger.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}
	return &HealthMonitor{
		config:   config,
		queue:    queue,
		tokens:   tokens,
		adapter:  serverAdapter,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// connectivityListener is told when the server becomes reachable again or
// stops being reachable.
type connectivityListener interface {
	NotifyOnline()
	NotifyOffline()
}

// OnConnectivityChange registers l to receive reachability transitions seen
// by the server ping. Must be called before Start.
func (m *HealthMonitor) OnConnectivityChange(l connectivityListener) {
	m.connectivity = l
}

// Start implements workers.Worker.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.job.start(ctx, func(ctx context.Context) {
		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Check(ctx)
			}
		}
	})
}

// Stop implements workers.Worker.
func (m *HealthMonitor) Stop() {
	m.job.stop()
}

// LastReport returns the report of the last check, nil before the first one.
func (m *HealthMonitor) LastReport() *models.HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return nil
	}
	r := *m.last
	r.Issues = append([]string(nil), m.last.Issues...)
	return &r
}

// Check inspects everything now and stores the report.
func (m *HealthMonitor) Check(ctx context.Context) models.HealthReport {
	report := models.HealthReport{CheckedAt: m.now().UTC()}

	cfg, err := m.config.Load(ctx)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("sync config unavailable: %v", err))
		return m.store(report)
	}

	report.SyncEnabled = cfg.Enabled
	report.ConsecutiveFailures = cfg.ConsecutiveFailures

	ops, err := m.queue.GetPending(ctx)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("pending queue unavailable: %v", err))
	}
	report.PendingOperations = len(ops)
	for _, op := range ops {
		if op.RetryCount >= StaleOperationRetries {
			report.StaleOperations++
		}
	}
	if report.StaleOperations > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d operations keep failing", report.StaleOperations))
	}

	if !cfg.Enabled {
		return m.store(report)
	}

	report.TokenValid = m.checkToken(ctx, &report)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = m.adapter.Ping(pingCtx)
	cancel()
	report.ServerReachable = !transportFailure(err)
	switch {
	case !report.ServerReachable:
		report.Issues = append(report.Issues, fmt.Sprintf("server unreachable: %v", err))
	case err != nil && !errors.Is(err, adapter.ErrNotFound):
		report.Issues = append(report.Issues, fmt.Sprintf("server health endpoint failing: %v", err))
	}
	m.observeReachability(report.ServerReachable)

	switch {
	case cfg.ConsecutiveFailures >= MaxRetries:
		report.Issues = append(report.Issues, fmt.Sprintf("automatic retries exhausted after %d failures", cfg.ConsecutiveFailures))
	case cfg.ConsecutiveFailures > 0:
		report.Issues = append(report.Issues, fmt.Sprintf("%d consecutive sync failures", cfg.ConsecutiveFailures))
	}

	if report.PendingOperations > 0 && (cfg.LastSyncAt == nil || report.CheckedAt.Sub(*cfg.LastSyncAt) > StaleSyncAge) {
		report.Issues = append(report.Issues, "pending changes have not been synced for over 24h")
	}

	return m.store(report)
}

// observeReachability forwards a change of server reachability. The first
// observation only reports going offline: the startup sync already covers
// the online case.
func (m *HealthMonitor) observeReachability(reachable bool) {
	m.mu.Lock()
	prev := m.reachable
	m.reachable = &reachable
	m.mu.Unlock()

	if m.connectivity == nil {
		return
	}

	switch {
	case prev == nil && !reachable, prev != nil && *prev && !reachable:
		m.connectivity.NotifyOffline()
	case prev != nil && !*prev && reachable:
		m.connectivity.NotifyOnline()
	}
}

// transportFailure reports whether err means no response came back at all.
// Any HTTP status, even 404 from a server without a health route, proves
// the server is reachable.
func transportFailure(err error) bool {
	return errors.Is(err, adapter.ErrNetwork) || errors.Is(err, context.DeadlineExceeded)
}

func (m *HealthMonitor) checkToken(ctx context.Context, report *models.HealthReport) bool {
	err := m.tokens.EnsureValidToken(ctx)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrTokenRefreshFailed):
		report.Issues = append(report.Issues, "token refresh failed, current token still valid")
		return true
	default:
		report.Issues = append(report.Issues, fmt.Sprintf("token invalid: %v", err))
		return false
	}
}

func (m *HealthMonitor) store(report models.HealthReport) models.HealthReport {
	report.Healthy = len(report.Issues) == 0
	metrics.SetHealthy(report.Healthy)

	m.mu.Lock()
	r := report
	m.last = &r
	m.mu.Unlock()

	event := m.logger.Debug()
	if !report.Healthy {
		event = m.logger.Warn().Strs("issues", report.Issues)
	}
	event.
		Str("func", "HealthMonitor.Check").
		Bool("sync_enabled", report.SyncEnabled).
		Bool("server_reachable", report.ServerReachable).
		Int("pending_operations", report.PendingOperations).
		Msg("health check finished")

	return report
}
