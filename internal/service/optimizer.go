// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

// QueueOptimizer reduces the pending queue to its minimal equivalent form
// before each push. It merges operations of the same entity, never across
// entities.
type QueueOptimizer struct {
	repo store.PendingOperationRepository

	logger *logger.Logger
}

// NewQueueOptimizer creates an optimizer working on repo.
func NewQueueOptimizer(repo store.PendingOperationRepository, logger *logger.Logger) *QueueOptimizer {
	return &QueueOptimizer{repo: repo, logger: logger}
}

// ConsolidateAll consolidates every entity with more than one queued
// operation and returns the number of operations removed. Each entity is
// rewritten in one transaction. Afterwards the queue is scanned again and
// ErrConsolidationInvariant is returned if an entity still has more than one
// operation.
func (o *QueueOptimizer) ConsolidateAll(ctx context.Context) (int, error) {
	ops, err := o.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending operations: %w", err)
	}

	removed := 0
	for _, group := range groupByEntity(ops) {
		if len(group) < 2 {
			continue
		}

		keep, removeIDs := consolidateEntity(group)
		if err = o.repo.Consolidate(ctx, keep, removeIDs); err != nil {
			return removed, fmt.Errorf("consolidate %s: %w", keep.EntityID, err)
		}
		removed += len(removeIDs)

		o.logger.Debug().
			Str("func", "QueueOptimizer.ConsolidateAll").
			Str("entity_id", keep.EntityID).
			Str("kind", string(keep.Kind)).
			Int("absorbed", len(removeIDs)).
			Msg("operations consolidated")
	}

	after, err := o.repo.List(ctx)
	if err != nil {
		return removed, fmt.Errorf("list pending operations: %w", err)
	}
	if dup, ok := firstDuplicateEntity(after); ok {
		return removed, fmt.Errorf("%w: %s", ErrConsolidationInvariant, dup)
	}

	metrics.RecordConsolidated(removed)
	return removed, nil
}

// groupByEntity splits ops by entity id. ops must already be sorted by
// timestamp; that order is kept inside each group.
func groupByEntity(ops []models.PendingOperation) [][]models.PendingOperation {
	index := make(map[string]int)
	var groups [][]models.PendingOperation

	for _, op := range ops {
		i, ok := index[op.EntityID]
		if !ok {
			i = len(groups)
			index[op.EntityID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], op)
	}
	return groups
}

// consolidateEntity collapses the timestamp-ordered operations of a single
// entity into one and returns it together with the ids it absorbed.
//
//  1. Any delete wins: the latest delete survives and absorbs everything.
//  2. Create + updates: the create survives with the latest payload and
//     timestamp and the merged clock of all operations.
//  3. Updates only: the earliest update survives with payload, timestamp and
//     clock of the latest one. Clocks are replaced, not merged, because each
//     update already carries the latest local clock.
func consolidateEntity(ops []models.PendingOperation) (models.PendingOperation, []string) {
	latest := ops[len(ops)-1]

	var keep models.PendingOperation
	switch {
	case slices.ContainsFunc(ops, isDelete):
		i := lastIndexFunc(ops, isDelete)
		keep = ops[i].Clone()

	case slices.ContainsFunc(ops, isCreate):
		i := slices.IndexFunc(ops, isCreate)
		keep = ops[i].Clone()
		keep.Payload = clonePayload(latest.Payload)
		keep.Timestamp = latest.Timestamp

		clocks := make([]models.VectorClock, 0, len(ops))
		for _, op := range ops {
			clocks = append(clocks, op.VectorClock)
		}
		keep.VectorClock = vclock.Merge(clocks...)

	default:
		keep = ops[0].Clone()
		keep.Payload = clonePayload(latest.Payload)
		keep.Timestamp = latest.Timestamp
		keep.VectorClock = latest.VectorClock.Clone()
	}

	removeIDs := make([]string, 0, len(ops)-1)
	for _, op := range ops {
		if op.ID == keep.ID {
			continue
		}
		removeIDs = append(removeIDs, op.ID)
		keep.ConsolidatedFrom = append(keep.ConsolidatedFrom, op.ID)
		keep.ConsolidatedFrom = append(keep.ConsolidatedFrom, op.ConsolidatedFrom...)
	}

	return keep, removeIDs
}

func firstDuplicateEntity(ops []models.PendingOperation) (string, bool) {
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if _, ok := seen[op.EntityID]; ok {
			return op.EntityID, true
		}
		seen[op.EntityID] = struct{}{}
	}
	return "", false
}

func isDelete(op models.PendingOperation) bool { return op.Kind == models.OperationDelete }
func isCreate(op models.PendingOperation) bool { return op.Kind == models.OperationCreate }

func lastIndexFunc(ops []models.PendingOperation, f func(models.PendingOperation) bool) int {
	for i := len(ops) - 1; i >= 0; i-- {
		if f(ops[i]) {
			return i
		}
	}
	return -1
}

func clonePayload(p *models.Task) *models.Task {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}
