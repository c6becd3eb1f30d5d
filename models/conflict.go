// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ConflictInfo describes a pair of causally concurrent versions of the same
// task. It only lives for the duration of one sync pass.
//
// Local or Remote may be nil when the conflict was reported by the server
// during push: the server cannot ship full entity state in that phase.
type ConflictInfo struct {
	EntityID    string      `json:"entity_id"`
	Local       *Task       `json:"local,omitempty"`
	Remote      *Task       `json:"remote,omitempty"`
	LocalClock  VectorClock `json:"local_clock,omitempty"`
	RemoteClock VectorClock `json:"remote_clock,omitempty"`
}
