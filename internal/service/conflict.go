// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

// ConflictResolver settles concurrent local/remote versions with
// last-write-wins on UpdatedAt.
type ConflictResolver struct {
	tasks store.TaskRepository
	queue *OperationQueue

	logger *logger.Logger
}

// NewConflictResolver creates a resolver writing winners to tasks. When
// queue is not nil, local winners are queued again for the next push.
func NewConflictResolver(tasks store.TaskRepository, queue *OperationQueue, logger *logger.Logger) *ConflictResolver {
	return &ConflictResolver{tasks: tasks, queue: queue, logger: logger}
}

// Resolve settles each conflict independently and stores the winner with
// the merged clock of both sides. Conflicts missing either side, as reported
// by the server during push, are skipped. Returns the number resolved.
func (r *ConflictResolver) Resolve(ctx context.Context, conflicts []models.ConflictInfo) (int, error) {
	resolved := 0
	for _, c := range conflicts {
		if c.Local == nil || c.Remote == nil {
			r.logger.Warn().
				Str("func", "ConflictResolver.Resolve").
				Str("entity_id", c.EntityID).
				Bool("has_local", c.Local != nil).
				Bool("has_remote", c.Remote != nil).
				Msg("conflict without both versions skipped")
			continue
		}

		winner := ResolveConflict(c)
		if remoteWins(*c.Local, *c.Remote) {
			if err := r.tasks.Put(ctx, winner); err != nil {
				return resolved, fmt.Errorf("store resolved %s: %w", c.EntityID, err)
			}
			if err := dropSuperseded(ctx, r.queue, c.EntityID, r.logger); err != nil {
				return resolved, err
			}
		} else if err := requeueLocalWinner(ctx, r.tasks, r.queue, winner); err != nil {
			return resolved, err
		}
		resolved++

		r.logger.Debug().
			Str("func", "ConflictResolver.Resolve").
			Str("entity_id", c.EntityID).
			Time("winner_updated_at", winner.UpdatedAt).
			Msg("conflict resolved")
	}
	return resolved, nil
}

// ResolveConflict returns the winning version of a conflict that has both
// sides. The remote copy wins ties, the same rule the pull phase applies.
func ResolveConflict(c models.ConflictInfo) models.Task {
	localClock := c.LocalClock
	if len(localClock) == 0 {
		localClock = c.Local.VectorClock
	}
	remoteClock := c.RemoteClock
	if len(remoteClock) == 0 {
		remoteClock = c.Remote.VectorClock
	}

	winner := c.Local.Clone()
	if remoteWins(*c.Local, *c.Remote) {
		winner = c.Remote.Clone()
	}
	winner.VectorClock = vclock.Merge(localClock, remoteClock)
	return winner
}

// remoteWins is the single last-write-wins rule: remote.UpdatedAt >= local.UpdatedAt.
func remoteWins(local, remote models.Task) bool {
	return !remote.UpdatedAt.Before(local.UpdatedAt)
}

// requeueLocalWinner stores a local version that beat a concurrent remote
// one and queues it as an update, so the other devices receive it.
func requeueLocalWinner(ctx context.Context, tasks store.TaskRepository, queue *OperationQueue, winner models.Task) error {
	if err := tasks.Put(ctx, winner); err != nil {
		return fmt.Errorf("store local winner %s: %w", winner.ID, err)
	}
	if queue == nil {
		return nil
	}
	payload := winner.Clone()
	if _, err := queue.Enqueue(ctx, models.OperationUpdate, winner.ID, &payload, winner.VectorClock); err != nil {
		return fmt.Errorf("requeue local winner %s: %w", winner.ID, err)
	}
	return nil
}

// dropSuperseded removes the queued operations of an entity whose remote
// version won. Their payloads are older than the stored copy and must not
// be pushed over it.
func dropSuperseded(ctx context.Context, queue *OperationQueue, entityID string, log *logger.Logger) error {
	if queue == nil {
		return nil
	}
	n, err := queue.DequeueEntities(ctx, entityID)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debug().
			Str("func", "dropSuperseded").
			Str("entity_id", entityID).
			Int("dropped", n).
			Msg("queued operations superseded by remote version")
	}
	return nil
}
