// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/models"
)

// MaxRetries is the number of consecutive failed syncs after which automatic
// retries stop until a new trigger occurs.
const MaxRetries = 5

// retryLadder is the fixed backoff ladder indexed by consecutive failures.
var retryLadder = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	300 * time.Second,
}

// RetryManager keeps the whole-sync backoff state. The state itself lives in
// the retry fields of SyncConfig so it survives restarts.
type RetryManager struct {
	config *ConfigStore
	now    func() time.Time

	logger *logger.Logger
}

// NewRetryManager creates a retry manager persisting through config.
func NewRetryManager(config *ConfigStore, logger *logger.Logger) *RetryManager {
	return &RetryManager{config: config, now: time.Now, logger: logger}
}

// NextRetryDelay returns the backoff after failures consecutive failures:
// ladder[min(failures-1, len-1)]. Values below 1 are treated as 1.
func NextRetryDelay(failures int) time.Duration {
	i := min(max(failures, 1)-1, len(retryLadder)-1)
	return retryLadder[i]
}

// RecordFailure increments the failure counter, remembers err as the last
// failure reason and schedules the next retry.
func (r *RetryManager) RecordFailure(ctx context.Context, err error) (models.SyncConfig, error) {
	now := r.now().UTC()
	reason := ""
	if err != nil {
		reason = err.Error()
	}

	cfg, uerr := r.config.Update(ctx, func(cfg *models.SyncConfig) {
		cfg.ConsecutiveFailures++
		cfg.LastFailureAt = timePtr(now)
		cfg.LastFailureReason = reason
		cfg.NextRetryAt = timePtr(now.Add(NextRetryDelay(cfg.ConsecutiveFailures)))
	})
	if uerr != nil {
		return models.SyncConfig{}, uerr
	}

	metrics.SetConsecutiveFailures(cfg.ConsecutiveFailures)

	r.logger.Warn().
		Str("func", "RetryManager.RecordFailure").
		Int("consecutive_failures", cfg.ConsecutiveFailures).
		Time("next_retry_at", *cfg.NextRetryAt).
		Str("reason", reason).
		Msg("sync failure recorded")

	return cfg, nil
}

// RecordSuccess resets all retry fields.
func (r *RetryManager) RecordSuccess(ctx context.Context) error {
	_, err := r.config.Update(ctx, resetRetryState)
	if err != nil {
		return err
	}
	metrics.SetConsecutiveFailures(0)
	return nil
}

// ShouldRetry reports whether automatic retries are still allowed.
func (r *RetryManager) ShouldRetry(ctx context.Context) (bool, error) {
	cfg, err := r.config.Load(ctx)
	if err != nil {
		return false, err
	}
	return shouldRetry(cfg), nil
}

// CanSyncNow reports whether the backoff window has passed. Only automatic
// syncs are gated by it; user-triggered ones bypass it.
func (r *RetryManager) CanSyncNow(ctx context.Context) (bool, error) {
	cfg, err := r.config.Load(ctx)
	if err != nil {
		return false, err
	}
	return canSyncNow(cfg, r.now()), nil
}

func resetRetryState(cfg *models.SyncConfig) {
	cfg.ConsecutiveFailures = 0
	cfg.LastFailureAt = nil
	cfg.LastFailureReason = ""
	cfg.NextRetryAt = nil
}

func shouldRetry(cfg models.SyncConfig) bool {
	return cfg.ConsecutiveFailures < MaxRetries
}

func canSyncNow(cfg models.SyncConfig, now time.Time) bool {
	return cfg.NextRetryAt == nil || !now.Before(*cfg.NextRetryAt)
}
