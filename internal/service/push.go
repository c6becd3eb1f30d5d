// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/models"
)

// Per-operation outcomes reported in PushResult.Outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeSkipped  = "skipped"
)

// OperationOutcome is the per-operation context of a push, used for user
// notification.
type OperationOutcome struct {
	OperationID string               `json:"operation_id"`
	EntityID    string               `json:"entity_id"`
	Kind        models.OperationKind `json:"kind"`
	Outcome     string               `json:"outcome"`
	Reason      string               `json:"reason,omitempty"`
	Details     string               `json:"details,omitempty"`
}

// PushResult is the outcome of the push phase.
type PushResult struct {
	Accepted          []string
	Rejected          []models.RejectedOperation
	Conflicts         []models.ConflictInfo
	ServerVectorClock models.VectorClock
	Outcomes          []OperationOutcome
}

// PushHandler encrypts queued operations and submits them in one batch.
type PushHandler struct {
	queue     *OperationQueue
	adapter   adapter.ServerAdapter
	encryptor crypto.Encryptor

	logger *logger.Logger
}

// NewPushHandler creates a push handler.
func NewPushHandler(queue *OperationQueue, serverAdapter adapter.ServerAdapter, encryptor crypto.Encryptor, logger *logger.Logger) *PushHandler {
	return &PushHandler{
		queue:     queue,
		adapter:   serverAdapter,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Push sends every pending operation. Deletes travel as task id + clock;
// everything else is serialized, encrypted and checksummed. Operations that
// fail to encrypt stay queued for the next pass.
//
// Accepted and conflicted entities are dequeued: all operations of that
// entity that were part of this batch. Rejected operations only get their
// retry counter bumped.
func (h *PushHandler) Push(ctx context.Context, cfg models.SyncConfig) (PushResult, error) {
	ops, err := h.queue.GetPending(ctx)
	if err != nil {
		return PushResult{}, err
	}
	if len(ops) == 0 {
		return PushResult{}, nil
	}

	var result PushResult

	batch := make([]models.PushOperation, 0, len(ops))
	sent := make(map[string][]models.PendingOperation)
	for _, op := range ops {
		pushOp, err := h.encode(op)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("func", "PushHandler.Push").
				Str("operation_id", op.ID).
				Str("entity_id", op.EntityID).
				Msg("operation skipped, stays queued")
			result.Outcomes = append(result.Outcomes, outcome(op, OutcomeSkipped, "", err.Error()))
			continue
		}
		batch = append(batch, pushOp)
		sent[op.EntityID] = append(sent[op.EntityID], op)
	}

	if len(batch) == 0 {
		return result, nil
	}

	started := time.Now()
	resp, err := h.adapter.Push(ctx, models.PushRequest{
		DeviceID:          cfg.DeviceID,
		Operations:        batch,
		ClientVectorClock: cfg.VectorClock.Clone(),
	})
	metrics.RecordPhase("push", time.Since(started))
	if err != nil {
		return result, fmt.Errorf("push %d operations: %w", len(batch), err)
	}

	result.ServerVectorClock = resp.ServerVectorClock

	for _, entityID := range resp.Accepted {
		entityOps, ok := sent[entityID]
		if !ok {
			continue
		}
		if err = h.queue.DequeueBulk(ctx, operationIDs(entityOps)); err != nil {
			return result, err
		}
		result.Accepted = append(result.Accepted, entityID)
		for _, op := range entityOps {
			result.Outcomes = append(result.Outcomes, outcome(op, OutcomeAccepted, "", ""))
		}
	}

	for _, rejected := range resp.Rejected {
		entityOps := sent[rejected.TaskID]
		for _, op := range entityOps {
			if err = h.queue.IncrementRetry(ctx, op.ID); err != nil {
				return result, err
			}
			result.Outcomes = append(result.Outcomes, outcome(op, OutcomeRejected, string(rejected.Reason), rejected.Details))
		}
		result.Rejected = append(result.Rejected, rejected)

		h.logger.Warn().
			Str("func", "PushHandler.Push").
			Str("entity_id", rejected.TaskID).
			Str("reason", string(rejected.Reason)).
			Str("details", rejected.Details).
			Msg("operation rejected by server")
	}

	// The authoritative version of a conflicted entity arrives in the pull
	// phase, so the local operation is dropped here.
	for _, conflict := range resp.Conflicts {
		entityOps := sent[conflict.EntityID]
		if err = h.queue.DequeueBulk(ctx, operationIDs(entityOps)); err != nil {
			return result, err
		}
		for _, op := range entityOps {
			result.Outcomes = append(result.Outcomes, outcome(op, OutcomeConflict, string(models.RejectConflict), ""))
		}
		result.Conflicts = append(result.Conflicts, conflict)
	}

	metrics.RecordOperations("pushed", len(result.Accepted))
	metrics.RecordOperations("rejected", len(result.Rejected))
	metrics.RecordOperations("conflicted", len(result.Conflicts))

	h.logger.Info().
		Str("func", "PushHandler.Push").
		Int("sent", len(batch)).
		Int("accepted", len(result.Accepted)).
		Int("rejected", len(result.Rejected)).
		Int("conflicts", len(result.Conflicts)).
		Msg("push phase finished")

	return result, nil
}

func (h *PushHandler) encode(op models.PendingOperation) (models.PushOperation, error) {
	pushOp := models.PushOperation{
		Type:        op.Kind,
		TaskID:      op.EntityID,
		VectorClock: op.VectorClock.Clone(),
	}
	if op.Kind == models.OperationDelete {
		return pushOp, nil
	}
	if op.Payload == nil {
		return models.PushOperation{}, fmt.Errorf("%w: %s without payload", ErrInvalidOperation, op.Kind)
	}

	plaintext, err := json.Marshal(op.Payload)
	if err != nil {
		return models.PushOperation{}, fmt.Errorf("encode payload: %w", err)
	}

	ciphertext, nonce, err := h.encryptor.Encrypt(plaintext)
	if err != nil {
		return models.PushOperation{}, fmt.Errorf("encrypt payload: %w", err)
	}

	pushOp.EncryptedBlob = ciphertext
	pushOp.Nonce = nonce
	pushOp.Checksum = h.encryptor.Hash(plaintext)
	return pushOp, nil
}

func outcome(op models.PendingOperation, result, reason, details string) OperationOutcome {
	return OperationOutcome{
		OperationID: op.ID,
		EntityID:    op.EntityID,
		Kind:        op.Kind,
		Outcome:     result,
		Reason:      reason,
		Details:     details,
	}
}

func operationIDs(ops []models.PendingOperation) []string {
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	return ids
}
