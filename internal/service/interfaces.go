// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the offline-first sync engine and the local
// task mutations that feed it.
//
// Data flows one way through a sync attempt:
//
//	local mutation -> OperationQueue -> QueueOptimizer -> PushHandler ->
//	(server) -> PullHandler -> ConflictResolver -> local store + SyncConfig
//
// [SyncEngine] runs one attempt, [SyncCoordinator] makes sure only one runs
// at a time and parks the rest, [BackgroundSyncManager] and [HealthMonitor]
// are the periodic workers. [SyncService] owns all of them.
package service

import (
	"context"

	"github.com/MKhiriev/go-task-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/sync_controller_mock.go -package=mock

// SyncController is the surface of the sync subsystem exposed to the local
// control API and the one-shot client.
type SyncController interface {
	// EnableSync stores the credentials handed over by the login flow and
	// turns sync on. The first enable queues every existing local task.
	EnableSync(ctx context.Context, creds models.AuthCredentials) (models.SyncConfig, error)

	// DisableSync turns sync off and clears the pending queue.
	DisableSync(ctx context.Context) error

	// RequestSync asks the coordinator for a sync with the given priority.
	RequestSync(ctx context.Context, priority models.SyncPriority) models.SyncResult

	// CancelPending drops queued sync requests. A running sync is not
	// affected. Returns the number of dropped requests.
	CancelPending() int

	// Status returns a read-only snapshot of the sync state.
	Status(ctx context.Context) (models.SyncStatusReport, error)

	// Health runs a health check now and returns its report.
	Health(ctx context.Context) models.HealthReport
}

// TaskController is the local task surface of the control API. Every
// mutation is recorded for the next sync while sync is enabled.
type TaskController interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id string) (models.Task, error)
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, task models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) error
}

// idGenerator produces fresh unique identifiers (operation ids, device ids,
// task ids).
type idGenerator interface {
	Generate() string
}

// changeNotifier is told about every local mutation so that a debounced
// sync can be scheduled.
type changeNotifier interface {
	NotifyChange()
}

// syncRunner executes exactly one sync attempt.
type syncRunner interface {
	Sync(ctx context.Context, priority models.SyncPriority) models.SyncResult
}

// syncRequester accepts sync requests and serializes them.
type syncRequester interface {
	RequestSync(ctx context.Context, priority models.SyncPriority) models.SyncResult
}
