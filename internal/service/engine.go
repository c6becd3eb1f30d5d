// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/app"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

// EngineState is the state of the sync engine.
type EngineState string

const (
	StateIdle    EngineState = "idle"
	StateRunning EngineState = "running"
)

// SyncEngine runs one sync attempt at a time:
//
//	prerequisites -> consolidate -> push -> reload config -> pull ->
//	resolve conflicts -> commit metadata -> reset backoff
//
// A concurrent call gets an already_running result; queuing is the
// coordinator's job.
type SyncEngine struct {
	config    *ConfigStore
	queue     *OperationQueue
	optimizer *QueueOptimizer
	retry     *RetryManager
	tokens    *TokenManager
	push      *PushHandler
	pull      *PullHandler
	resolver  *ConflictResolver
	encryptor crypto.Encryptor
	history   store.SyncHistoryRepository
	now       func() time.Time

	running atomic.Bool

	mu         sync.RWMutex
	state      EngineState
	lastResult *models.SyncResult

	logger *logger.Logger
}

// SyncEngineDeps are the collaborators of a SyncEngine.
type SyncEngineDeps struct {
	Config    *ConfigStore
	Queue     *OperationQueue
	Optimizer *QueueOptimizer
	Retry     *RetryManager
	Tokens    *TokenManager
	Push      *PushHandler
	Pull      *PullHandler
	Resolver  *ConflictResolver
	Encryptor crypto.Encryptor
	// History is optional.
	History store.SyncHistoryRepository
}

// NewSyncEngine creates an idle engine.
func NewSyncEngine(deps SyncEngineDeps, logger *logger.Logger) *SyncEngine {
	return &SyncEngine{
		config:    deps.Config,
		queue:     deps.Queue,
		optimizer: deps.Optimizer,
		retry:     deps.Retry,
		tokens:    deps.Tokens,
		push:      deps.Push,
		pull:      deps.Pull,
		resolver:  deps.Resolver,
		encryptor: deps.Encryptor,
		history:   deps.History,
		now:       time.Now,
		state:     StateIdle,
		logger:    logger,
	}
}

// State returns StateRunning while a sync body executes, StateIdle otherwise.
func (e *SyncEngine) State() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state
}

// IsRunning reports whether a sync is in progress.
func (e *SyncEngine) IsRunning() bool {
	return e.running.Load()
}

// LastResult returns a copy of the last terminal result, nil if no sync has
// finished yet. already_running results are not recorded.
func (e *SyncEngine) LastResult() *models.SyncResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.lastResult == nil {
		return nil
	}
	r := *e.lastResult
	return &r
}

// Sync runs one sync attempt with the given priority.
func (e *SyncEngine) Sync(ctx context.Context, priority models.SyncPriority) models.SyncResult {
	if !e.running.CompareAndSwap(false, true) {
		return models.SyncResult{
			Status:    models.SyncStatusAlreadyRunning,
			Priority:  priority,
			Timestamp: e.now().UTC(),
			Message:   app.MsgSyncAlreadyRunning,
		}
	}

	started := time.Now()
	e.setState(StateRunning, nil)

	var result models.SyncResult
	defer func() {
		e.finish(ctx, result, time.Since(started))
	}()

	result = e.run(ctx, priority)
	return result
}

func (e *SyncEngine) finish(ctx context.Context, result models.SyncResult, elapsed time.Duration) {
	e.setState(StateIdle, &result)
	e.running.Store(false)

	metrics.RecordSyncAttempt(string(result.Priority), string(result.Status), string(result.ErrorCategory), elapsed)
	if n, err := e.queue.Count(ctx); err == nil {
		metrics.SetQueueDepth(n)
	}

	if e.history != nil {
		if err := e.history.Append(context.WithoutCancel(ctx), result); err != nil {
			e.logger.Warn().Err(err).Str("func", "SyncEngine.finish").Msg("sync history append failed")
		}
	}

	event := e.logger.Info()
	if result.Status == models.SyncStatusError {
		event = e.logger.Warn().Str("error", result.Error).Str("category", string(result.ErrorCategory))
	}
	event.
		Str("func", "SyncEngine.Sync").
		Str("priority", string(result.Priority)).
		Str("status", string(result.Status)).
		Int("pushed", result.Pushed).
		Int("pulled", result.Pulled).
		Int("conflicts_resolved", result.ConflictsResolved).
		Dur("elapsed", elapsed).
		Msg("sync finished")
}

func (e *SyncEngine) setState(state EngineState, result *models.SyncResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = state
	if result != nil {
		r := *result
		e.lastResult = &r
	}
}

func (e *SyncEngine) run(ctx context.Context, priority models.SyncPriority) models.SyncResult {
	cfg, err := e.config.Load(ctx)
	if err != nil {
		return e.fail(ctx, priority, err, "")
	}

	if !cfg.Enabled {
		return e.reject(priority, ErrSyncDisabled, app.MsgSyncDisabled)
	}

	if priority != models.SyncPriorityUser && !canSyncNow(cfg, e.now()) {
		result := e.reject(priority, ErrBackoffActive, app.MsgSyncBackoff)
		result.ErrorCategory = models.ErrorCategoryTransient
		result.WillRetry = shouldRetry(cfg)
		return result
	}

	if !e.encryptor.IsInitialized() {
		return e.reject(priority, ErrEncryptorNotReady, app.MsgEncryptionLocked)
	}

	if err = e.tokens.EnsureValidToken(ctx); err != nil {
		if !errors.Is(err, ErrTokenRefreshFailed) {
			return e.fail(ctx, priority, err, app.MsgReauthRequired)
		}
		e.logger.Warn().Err(err).Str("func", "SyncEngine.run").Msg("proactive token refresh failed, continuing with current token")
	}

	if _, err = e.optimizer.ConsolidateAll(ctx); err != nil {
		return e.fail(ctx, priority, err, "")
	}

	// The start time, not the end time, becomes lastSyncAt: edits made while
	// this sync runs are picked up by the next one instead of being missed.
	syncStart := e.now().UTC()

	pushed, pulled, err := e.exchange(ctx)
	if isUnauthorized(err) {
		e.logger.Info().Str("func", "SyncEngine.run").Msg("server rejected token, refreshing once")
		if rerr := e.tokens.HandleUnauthorized(ctx); rerr != nil {
			return e.fail(ctx, priority, rerr, app.MsgReauthRequired)
		}
		pushed, pulled, err = e.exchange(ctx)
		if isUnauthorized(err) {
			return e.fail(ctx, priority, err, app.MsgSessionRefreshed)
		}
	}
	if err != nil {
		return e.fail(ctx, priority, err, "")
	}

	result := models.SyncResult{
		Status:   models.SyncStatusSuccess,
		Priority: priority,
		Pushed:   len(pushed.Accepted),
		Pulled:   len(pulled.Tasks) + len(pulled.DeletedIDs),
	}

	conflicts := append(append([]models.ConflictInfo(nil), pushed.Conflicts...), pulled.Conflicts...)

	cfg, err = e.config.Load(ctx)
	if err != nil {
		return e.fail(ctx, priority, err, "")
	}

	switch cfg.ConflictStrategy {
	case models.ConflictStrategyManual:
		if len(pulled.Conflicts) > 0 {
			result.Status = models.SyncStatusConflict
			result.Conflicts = pulled.Conflicts
		}
	default:
		resolved, err := e.resolver.Resolve(ctx, conflicts)
		if err != nil {
			return e.fail(ctx, priority, err, "")
		}
		result.ConflictsResolved = resolved
		metrics.RecordOperations("resolved", resolved)
	}

	_, err = e.config.Update(ctx, func(cfg *models.SyncConfig) {
		cfg.VectorClock = vclock.Merge(cfg.VectorClock, pushed.ServerVectorClock, pulled.ServerVectorClock)
		cfg.LastSyncAt = timePtr(syncStart)
	})
	if err != nil {
		return e.fail(ctx, priority, err, "")
	}

	if err = e.retry.RecordSuccess(ctx); err != nil {
		return e.fail(ctx, priority, err, "")
	}

	metrics.RecordSyncSuccess(syncStart)

	result.Timestamp = e.now().UTC()
	return result
}

// exchange pushes, reloads the config and pulls. The pull asks the server
// with the clock it returned from the push, without persisting it: the
// local clock only advances after a complete pull.
func (e *SyncEngine) exchange(ctx context.Context) (PushResult, PullResult, error) {
	cfg, err := e.config.Load(ctx)
	if err != nil {
		return PushResult{}, PullResult{}, err
	}

	pushed, err := e.push.Push(ctx, cfg)
	if err != nil {
		return pushed, PullResult{}, fmt.Errorf("push: %w", err)
	}

	cfg, err = e.config.Load(ctx)
	if err != nil {
		return pushed, PullResult{}, err
	}
	cfg.VectorClock = vclock.Merge(cfg.VectorClock, pushed.ServerVectorClock)

	pulled, err := e.pull.Pull(ctx, cfg)
	if err != nil {
		return pushed, pulled, fmt.Errorf("pull: %w", err)
	}

	return pushed, pulled, nil
}

// reject builds an error result for a sync that was refused before any
// network I/O. Backoff counters are left alone.
func (e *SyncEngine) reject(priority models.SyncPriority, err error, message string) models.SyncResult {
	return models.SyncResult{
		Status:        models.SyncStatusError,
		Priority:      priority,
		Timestamp:     e.now().UTC(),
		Error:         err.Error(),
		ErrorCategory: ClassifyError(err),
		Message:       message,
	}
}

// fail classifies err and applies its recovery policy. Only transient
// failures feed the backoff.
func (e *SyncEngine) fail(ctx context.Context, priority models.SyncPriority, err error, message string) models.SyncResult {
	category := ClassifyError(err)
	result := models.SyncResult{
		Status:        models.SyncStatusError,
		Priority:      priority,
		Timestamp:     e.now().UTC(),
		Error:         err.Error(),
		ErrorCategory: category,
		Message:       message,
	}

	switch category {
	case models.ErrorCategoryTransient:
		cfg, rerr := e.retry.RecordFailure(context.WithoutCancel(ctx), err)
		if rerr != nil {
			e.logger.Error().Err(rerr).Str("func", "SyncEngine.fail").Msg("failed to record sync failure")
			break
		}
		result.WillRetry = shouldRetry(cfg)
		switch {
		case !result.WillRetry:
			result.Message = app.MsgCheckConnection
		case priority == models.SyncPriorityUser:
			result.Message = app.MsgSyncWillRetry
		}
	case models.ErrorCategoryAuth:
		if result.Message == "" {
			result.Message = app.MsgReauthRequired
		}
	case models.ErrorCategoryPermanent:
		if result.Message == "" {
			result.Message = err.Error()
		}
	}

	return result
}
