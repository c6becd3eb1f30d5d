// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// PullRequest asks the server for everything newer than the caller has seen.
type PullRequest struct {
	DeviceID        string      `json:"deviceId"`
	LastVectorClock VectorClock `json:"lastVectorClock"`
	SinceTimestamp  *time.Time  `json:"sinceTimestamp,omitempty"`
	Limit           int         `json:"limit"`
	Cursor          string      `json:"cursor,omitempty"`
}

// EncryptedTask is a task as stored by the server: an opaque ciphertext plus
// the metadata the server needs for ordering.
type EncryptedTask struct {
	ID            string      `json:"id"`
	EncryptedBlob string      `json:"encryptedBlob"`
	Nonce         string      `json:"nonce"`
	VectorClock   VectorClock `json:"vectorClock"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Checksum      string      `json:"checksum"`
}

// PullResponse is one page of server changes.
type PullResponse struct {
	Tasks             []EncryptedTask `json:"tasks"`
	DeletedTaskIDs    []string        `json:"deletedTaskIds"`
	ServerVectorClock VectorClock     `json:"serverVectorClock"`
	Conflicts         []ConflictInfo  `json:"conflicts"`
	HasMore           bool            `json:"hasMore"`
	NextCursor        string          `json:"nextCursor,omitempty"`
}
