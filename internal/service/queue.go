// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

// OperationQueue is the durable, timestamp-ordered log of local mutations
// the server has not acknowledged yet. Every enqueue is persisted before it
// returns.
type OperationQueue struct {
	repo store.PendingOperationRepository
	ids  idGenerator
	now  func() time.Time

	// last enqueue timestamp; new ones are kept strictly increasing so the
	// order survives coarse clocks.
	mu   sync.Mutex
	last time.Time

	logger *logger.Logger
}

// NewOperationQueue creates a queue backed by repo.
func NewOperationQueue(repo store.PendingOperationRepository, ids idGenerator, logger *logger.Logger) *OperationQueue {
	return &OperationQueue{
		repo:   repo,
		ids:    ids,
		now:    time.Now,
		logger: logger,
	}
}

// Enqueue appends a new operation with a fresh id and a zero retry count.
// payload must be nil for deletes and non-nil otherwise.
func (q *OperationQueue) Enqueue(ctx context.Context, kind models.OperationKind, entityID string, payload *models.Task, clock models.VectorClock) (models.PendingOperation, error) {
	if entityID == "" {
		return models.PendingOperation{}, fmt.Errorf("%w: empty entity id", ErrInvalidOperation)
	}
	if (kind == models.OperationDelete) != (payload == nil) {
		return models.PendingOperation{}, fmt.Errorf("%w: %s with payload=%t", ErrInvalidOperation, kind, payload != nil)
	}

	op := models.PendingOperation{
		ID:          q.ids.Generate(),
		EntityID:    entityID,
		Kind:        kind,
		Timestamp:   q.nextTimestamp(),
		VectorClock: clock.Clone(),
	}
	if payload != nil {
		p := payload.Clone()
		op.Payload = &p
	}

	if err := q.repo.Add(ctx, op); err != nil {
		return models.PendingOperation{}, fmt.Errorf("enqueue %s %s: %w", kind, entityID, err)
	}

	q.logger.Debug().
		Str("func", "OperationQueue.Enqueue").
		Str("operation_id", op.ID).
		Str("entity_id", entityID).
		Str("kind", string(kind)).
		Msg("operation queued")

	return op, nil
}

func (q *OperationQueue) nextTimestamp() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()

	ts := q.now().UTC()
	if !ts.After(q.last) {
		ts = q.last.Add(time.Nanosecond)
	}
	q.last = ts
	return ts
}

// GetPending returns every queued operation ordered by timestamp ascending.
// The order is a staleness heuristic, not a commit order.
func (q *OperationQueue) GetPending(ctx context.Context) ([]models.PendingOperation, error) {
	ops, err := q.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}
	return ops, nil
}

// GetPendingFor returns the queued operations of one entity ordered by
// timestamp.
func (q *OperationQueue) GetPendingFor(ctx context.Context, entityID string) ([]models.PendingOperation, error) {
	ops, err := q.repo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("list pending operations of %s: %w", entityID, err)
	}
	return ops, nil
}

// Dequeue removes a single operation.
func (q *OperationQueue) Dequeue(ctx context.Context, id string) error {
	return q.DequeueBulk(ctx, []string{id})
}

// DequeueBulk removes operations by id. Unknown ids are ignored.
func (q *OperationQueue) DequeueBulk(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := q.repo.Remove(ctx, ids...); err != nil {
		return fmt.Errorf("dequeue %d operations: %w", len(ids), err)
	}
	return nil
}

// DequeueEntities removes every operation of the given entities.
func (q *OperationQueue) DequeueEntities(ctx context.Context, entityIDs ...string) (int, error) {
	n, err := q.repo.RemoveByEntity(ctx, entityIDs...)
	if err != nil {
		return 0, fmt.Errorf("dequeue entities: %w", err)
	}
	return n, nil
}

// IncrementRetry bumps the per-operation retry counter after a server
// rejection. It is unrelated to the whole-sync backoff of RetryManager.
func (q *OperationQueue) IncrementRetry(ctx context.Context, id string) error {
	if err := q.repo.IncrementRetry(ctx, id); err != nil {
		return fmt.Errorf("increment retry of %s: %w", id, err)
	}
	return nil
}

// PopulateFromExisting queues a create for every task that has no queued
// operation yet. It must run once, when sync is newly enabled; running it
// on every sync would re-queue everything forever.
func (q *OperationQueue) PopulateFromExisting(ctx context.Context, tasks []models.Task) (int, error) {
	pending, err := q.GetPending(ctx)
	if err != nil {
		return 0, err
	}

	queued := make(map[string]struct{}, len(pending))
	for _, op := range pending {
		queued[op.EntityID] = struct{}{}
	}

	added := 0
	for i := range tasks {
		task := tasks[i]
		if _, ok := queued[task.ID]; ok {
			continue
		}
		if _, err = q.Enqueue(ctx, models.OperationCreate, task.ID, &task, task.VectorClock); err != nil {
			return added, err
		}
		queued[task.ID] = struct{}{}
		added++
	}

	q.logger.Info().
		Str("func", "OperationQueue.PopulateFromExisting").
		Int("tasks", len(tasks)).
		Int("queued", added).
		Msg("existing tasks queued for initial sync")

	return added, nil
}

// Count returns the number of queued operations.
func (q *OperationQueue) Count(ctx context.Context) (int, error) {
	n, err := q.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending operations: %w", err)
	}
	metrics.SetQueueDepth(n)
	return n, nil
}

// Clear drops every queued operation.
func (q *OperationQueue) Clear(ctx context.Context) error {
	if err := q.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear pending operations: %w", err)
	}
	metrics.SetQueueDepth(0)
	return nil
}
