// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// HealthReport is produced by the periodic sync self-check.
type HealthReport struct {
	Healthy             bool      `json:"healthy"`
	CheckedAt           time.Time `json:"checked_at"`
	SyncEnabled         bool      `json:"sync_enabled"`
	ServerReachable     bool      `json:"server_reachable"`
	TokenValid          bool      `json:"token_valid"`
	PendingOperations   int       `json:"pending_operations"`
	StaleOperations     int       `json:"stale_operations"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Issues              []string  `json:"issues,omitempty"`
}
