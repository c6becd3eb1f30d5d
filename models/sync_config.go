// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ConflictStrategy selects how concurrent local/remote edits are settled.
type ConflictStrategy string

const (
	ConflictStrategyLastWriteWins ConflictStrategy = "last_write_wins"
	ConflictStrategyManual        ConflictStrategy = "manual"
)

// Valid reports whether s is one of the known strategies.
func (s ConflictStrategy) Valid() bool {
	return s == ConflictStrategyLastWriteWins || s == ConflictStrategyManual
}

// SyncConfigSchemaVersion is the current layout of SyncConfig. Older persisted
// records are upgraded once at load time.
const SyncConfigSchemaVersion = 3

// SyncConfig is the per-device sync record. Exactly one instance exists per
// local installation and every phase of the engine reads and rewrites it.
type SyncConfig struct {
	SchemaVersion int `json:"schema_version"`

	Enabled bool `json:"enabled"`

	// identity
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`

	// auth
	Token          string     `json:"token"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`

	LastSyncAt  *time.Time  `json:"last_sync_at,omitempty"`
	VectorClock VectorClock `json:"vector_clock"`

	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
	ServerURL        string           `json:"server_url"`

	// retry state, owned by the retry manager
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	LastFailureReason   string     `json:"last_failure_reason,omitempty"`
	NextRetryAt         *time.Time `json:"next_retry_at,omitempty"`
}

// Clone returns a deep copy of the config.
func (c SyncConfig) Clone() SyncConfig {
	out := c
	out.VectorClock = c.VectorClock.Clone()
	out.TokenExpiresAt = cloneTime(c.TokenExpiresAt)
	out.LastSyncAt = cloneTime(c.LastSyncAt)
	out.LastFailureAt = cloneTime(c.LastFailureAt)
	out.NextRetryAt = cloneTime(c.NextRetryAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
