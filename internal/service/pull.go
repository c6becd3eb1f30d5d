// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/validators"
	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

// DefaultPullPageSize bounds a single pull page when none is configured.
const DefaultPullPageSize = 100

// maxPullPages stops a misbehaving server from keeping the client in an
// endless pagination loop.
const maxPullPages = 1000

// PullResult is the outcome of the pull phase.
type PullResult struct {
	// Tasks are the remote versions that were applied locally.
	Tasks []models.Task

	// DeletedIDs are the server-reported deletions applied locally.
	DeletedIDs []string

	// Skipped counts remote tasks kept out because the local copy was newer
	// or the task failed schema validation.
	Skipped int

	// Requeued are local winners over a concurrent remote version, queued
	// again so the server converges on them.
	Requeued []string

	ServerVectorClock models.VectorClock
	Conflicts         []models.ConflictInfo
}

// PullHandler fetches server changes, decrypts them and applies them to the
// local store.
type PullHandler struct {
	adapter   adapter.ServerAdapter
	encryptor crypto.Encryptor
	tasks     store.TaskRepository
	queue     *OperationQueue
	validator validators.Validator
	pageSize  int

	logger *logger.Logger
}

// NewPullHandler creates a pull handler. pageSize <= 0 selects
// DefaultPullPageSize.
func NewPullHandler(serverAdapter adapter.ServerAdapter, encryptor crypto.Encryptor, tasks store.TaskRepository, queue *OperationQueue, validator validators.Validator, pageSize int, logger *logger.Logger) *PullHandler {
	if pageSize <= 0 {
		pageSize = DefaultPullPageSize
	}
	return &PullHandler{
		adapter:   serverAdapter,
		encryptor: encryptor,
		tasks:     tasks,
		queue:     queue,
		validator: validator,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Pull requests everything newer than cfg.LastSyncAt / cfg.VectorClock,
// following the server cursor until the last page.
//
// Each remote task is decrypted, checksum-verified and validated. A local
// copy is replaced when remote.UpdatedAt >= local.UpdatedAt, keeping the
// merged clock of both; a strictly newer local copy is kept. With the manual
// strategy, a remote task whose clock is concurrent with a locally pending
// edit is not applied but reported as a conflict.
//
// A local copy that wins against a concurrent remote version is stored with
// the merged clock and queued again as an update.
//
// A decryption or checksum failure aborts the pull: it is not something a
// retry can fix and skipping would silently lose data.
func (h *PullHandler) Pull(ctx context.Context, cfg models.SyncConfig) (PullResult, error) {
	result := PullResult{ServerVectorClock: models.VectorClock{}}

	started := time.Now()
	defer func() { metrics.RecordPhase("pull", time.Since(started)) }()

	cursor := ""
	for page := 0; page < maxPullPages; page++ {
		resp, err := h.adapter.Pull(ctx, models.PullRequest{
			DeviceID:        cfg.DeviceID,
			LastVectorClock: cfg.VectorClock.Clone(),
			SinceTimestamp:  cfg.LastSyncAt,
			Limit:           h.pageSize,
			Cursor:          cursor,
		})
		if err != nil {
			return result, fmt.Errorf("pull page %d: %w", page, err)
		}

		for _, encrypted := range resp.Tasks {
			if err = h.applyRemote(ctx, cfg, encrypted, &result); err != nil {
				return result, err
			}
		}

		if len(resp.DeletedTaskIDs) > 0 {
			if err = h.tasks.BulkDelete(ctx, resp.DeletedTaskIDs); err != nil {
				return result, fmt.Errorf("apply remote deletions: %w", err)
			}
			result.DeletedIDs = append(result.DeletedIDs, resp.DeletedTaskIDs...)
		}

		result.ServerVectorClock = vclock.Merge(result.ServerVectorClock, resp.ServerVectorClock)
		result.Conflicts = append(result.Conflicts, resp.Conflicts...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	metrics.RecordOperations("pulled", len(result.Tasks)+len(result.DeletedIDs))

	h.logger.Info().
		Str("func", "PullHandler.Pull").
		Int("applied", len(result.Tasks)).
		Int("deleted", len(result.DeletedIDs)).
		Int("skipped", result.Skipped).
		Int("requeued", len(result.Requeued)).
		Int("conflicts", len(result.Conflicts)).
		Msg("pull phase finished")

	return result, nil
}

func (h *PullHandler) applyRemote(ctx context.Context, cfg models.SyncConfig, encrypted models.EncryptedTask, result *PullResult) error {
	remote, err := h.decode(encrypted)
	if err != nil {
		return err
	}

	if err = h.validator.Validate(ctx, remote); err != nil {
		h.logger.Warn().
			Err(err).
			Str("func", "PullHandler.applyRemote").
			Str("entity_id", encrypted.ID).
			Msg("remote task failed validation, skipped")
		result.Skipped++
		return nil
	}

	local, err := h.tasks.Get(ctx, remote.ID)
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		if err = h.tasks.Put(ctx, remote); err != nil {
			return fmt.Errorf("store remote %s: %w", remote.ID, err)
		}
		result.Tasks = append(result.Tasks, remote)
		return nil
	case err != nil:
		return fmt.Errorf("load local %s: %w", remote.ID, err)
	}

	if len(remote.VectorClock) > 0 && vclock.Equal(local.VectorClock, remote.VectorClock) {
		result.Skipped++
		return nil
	}

	if cfg.ConflictStrategy == models.ConflictStrategyManual && vclock.IsConcurrent(local.VectorClock, remote.VectorClock) {
		ops, err := h.queue.GetPendingFor(ctx, remote.ID)
		if err != nil {
			return err
		}
		if len(ops) > 0 {
			result.Conflicts = append(result.Conflicts, models.ConflictInfo{
				EntityID:    remote.ID,
				Local:       &local,
				Remote:      &remote,
				LocalClock:  local.VectorClock.Clone(),
				RemoteClock: remote.VectorClock.Clone(),
			})
			return nil
		}
	}

	if !remoteWins(local, remote) {
		result.Skipped++
		if !vclock.IsConcurrent(local.VectorClock, remote.VectorClock) {
			return nil
		}
		local.VectorClock = vclock.Merge(local.VectorClock, remote.VectorClock)
		if err = requeueLocalWinner(ctx, h.tasks, h.queue, local); err != nil {
			return err
		}
		result.Requeued = append(result.Requeued, local.ID)
		return nil
	}

	remote.VectorClock = vclock.Merge(local.VectorClock, remote.VectorClock)
	if err = h.tasks.Put(ctx, remote); err != nil {
		return fmt.Errorf("store remote %s: %w", remote.ID, err)
	}
	if err = dropSuperseded(ctx, h.queue, remote.ID, h.logger); err != nil {
		return err
	}
	result.Tasks = append(result.Tasks, remote)
	return nil
}

// decode decrypts a remote task and checks it against its checksum. The
// clock the server tracks for the entity is merged into the decrypted one.
func (h *PullHandler) decode(encrypted models.EncryptedTask) (models.Task, error) {
	plaintext, err := h.encryptor.Decrypt(encrypted.EncryptedBlob, encrypted.Nonce)
	if err != nil {
		return models.Task{}, fmt.Errorf("decrypt %s: %w", encrypted.ID, err)
	}

	if encrypted.Checksum != "" && h.encryptor.Hash(plaintext) != encrypted.Checksum {
		return models.Task{}, fmt.Errorf("%w: %s", ErrChecksumMismatch, encrypted.ID)
	}

	var task models.Task
	if err = json.Unmarshal(plaintext, &task); err != nil {
		return models.Task{}, fmt.Errorf("%w: %s: %w", ErrInvalidRemoteTask, encrypted.ID, err)
	}
	if task.ID != encrypted.ID {
		return models.Task{}, fmt.Errorf("%w: payload id %q under %q", ErrInvalidRemoteTask, task.ID, encrypted.ID)
	}

	task.VectorClock = vclock.Merge(task.VectorClock, encrypted.VectorClock)
	return task, nil
}
