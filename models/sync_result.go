// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncStatus is the outcome of a sync attempt.
type SyncStatus string

const (
	SyncStatusSuccess        SyncStatus = "success"
	SyncStatusError          SyncStatus = "error"
	SyncStatusConflict       SyncStatus = "conflict"
	SyncStatusAlreadyRunning SyncStatus = "already_running"
)

// SyncPriority tells who asked for a sync. User-triggered syncs bypass the
// retry backoff gate; automatic ones do not.
type SyncPriority string

const (
	SyncPriorityUser SyncPriority = "user"
	SyncPriorityAuto SyncPriority = "auto"
)

// ErrorCategory is the recovery class of a failed sync.
type ErrorCategory string

const (
	ErrorCategoryNone      ErrorCategory = ""
	ErrorCategoryTransient ErrorCategory = "transient"
	ErrorCategoryAuth      ErrorCategory = "auth"
	ErrorCategoryPermanent ErrorCategory = "permanent"
)

// SyncResult is returned to the caller of a sync attempt. It is never
// persisted by the engine itself; the history log keeps a best-effort copy.
type SyncResult struct {
	Status            SyncStatus     `json:"status"`
	Priority          SyncPriority   `json:"priority"`
	Pushed            int            `json:"pushed"`
	Pulled            int            `json:"pulled"`
	ConflictsResolved int            `json:"conflicts_resolved"`
	Conflicts         []ConflictInfo `json:"conflicts,omitempty"`
	Timestamp         time.Time      `json:"timestamp"`
	Error             string         `json:"error,omitempty"`
	ErrorCategory     ErrorCategory  `json:"error_category,omitempty"`

	// Message is the user-facing explanation of a failed or deferred sync.
	Message string `json:"message,omitempty"`

	// WillRetry is set when a transient failure scheduled a backoff retry.
	WillRetry bool `json:"will_retry,omitempty"`

	// Queued is set by the coordinator when the request was parked behind a
	// running sync instead of being executed.
	Queued bool `json:"queued,omitempty"`
}
