// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/models"
)

type pendingRequest struct {
	priority    models.SyncPriority
	requestedAt time.Time
}

// SyncCoordinator serializes sync requests on top of a single engine.
//
// While a sync runs, further requests are parked: a user request replaces a
// parked auto request, an auto request is absorbed by a parked user request,
// and a repeated request of the same priority only refreshes the parked
// request's timestamp. When the running sync completes the parked request
// is executed in the background.
type SyncCoordinator struct {
	runner syncRunner
	now    func() time.Time

	mu      sync.Mutex
	running bool
	pending *pendingRequest

	drains sync.WaitGroup

	logger *logger.Logger
}

// NewSyncCoordinator creates a coordinator in front of runner.
func NewSyncCoordinator(runner syncRunner, logger *logger.Logger) *SyncCoordinator {
	return &SyncCoordinator{
		runner: runner,
		now:    time.Now,
		logger: logger,
	}
}

// RequestSync runs a sync right away if none is in progress and returns its
// result. Otherwise the request is parked and an already_running result with
// Queued set is returned immediately.
func (c *SyncCoordinator) RequestSync(ctx context.Context, priority models.SyncPriority) models.SyncResult {
	c.mu.Lock()
	if c.running {
		c.park(priority)
		c.mu.Unlock()

		metrics.RecordCoordinatorQueued(string(priority))
		return models.SyncResult{
			Status:    models.SyncStatusAlreadyRunning,
			Priority:  priority,
			Timestamp: c.now().UTC(),
			Queued:    true,
		}
	}
	c.running = true
	c.mu.Unlock()

	result := c.runner.Sync(ctx, priority)

	c.drains.Add(1)
	go c.drain(context.WithoutCancel(ctx))

	return result
}

// park must be called with mu held.
func (c *SyncCoordinator) park(priority models.SyncPriority) {
	now := c.now()

	switch {
	case c.pending == nil:
		c.pending = &pendingRequest{priority: priority, requestedAt: now}
	case c.pending.priority == priority:
		c.pending.requestedAt = now
	case priority == models.SyncPriorityUser:
		c.pending = &pendingRequest{priority: priority, requestedAt: now}
	default:
		// auto behind a parked user request: nothing to add
		return
	}

	c.logger.Debug().
		Str("func", "SyncCoordinator.park").
		Str("priority", string(c.pending.priority)).
		Msg("sync request parked")
}

// drain executes parked requests one at a time until none is left, then
// marks the coordinator idle.
func (c *SyncCoordinator) drain(ctx context.Context) {
	defer c.drains.Done()

	for {
		c.mu.Lock()
		next := c.pending
		c.pending = nil
		if next == nil {
			c.running = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		c.logger.Debug().
			Str("func", "SyncCoordinator.drain").
			Str("priority", string(next.priority)).
			Dur("waited", c.now().Sub(next.requestedAt)).
			Msg("running parked sync request")

		c.runner.Sync(ctx, next.priority)
	}
}

// CancelPending drops the parked request, if any. A running sync is not
// interrupted. Returns the number of dropped requests.
func (c *SyncCoordinator) CancelPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return 0
	}
	c.pending = nil
	return 1
}

// IsRunning reports whether a sync, direct or parked, is being executed.
func (c *SyncCoordinator) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// PendingPriorities returns the priorities currently parked.
func (c *SyncCoordinator) PendingPriorities() []models.SyncPriority {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return nil
	}
	return []models.SyncPriority{c.pending.priority}
}

// Wait blocks until parked requests have been drained.
func (c *SyncCoordinator) Wait() {
	c.drains.Wait()
}
