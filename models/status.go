// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncStatusReport is a read-only snapshot of the sync subsystem exposed to
// the local control API.
type SyncStatusReport struct {
	Enabled             bool           `json:"enabled"`
	DeviceID            string         `json:"device_id"`
	DeviceName          string         `json:"device_name"`
	Running             bool           `json:"running"`
	Offline             bool           `json:"offline"`
	PendingOperations   int            `json:"pending_operations"`
	LastSyncAt          *time.Time     `json:"last_sync_at,omitempty"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	NextRetryAt         *time.Time     `json:"next_retry_at,omitempty"`
	LastFailureReason   string         `json:"last_failure_reason,omitempty"`
	LastResult          *SyncResult    `json:"last_result,omitempty"`
	Health              *HealthReport  `json:"health,omitempty"`
	QueuedPriorities    []SyncPriority `json:"queued_priorities,omitempty"`
}
