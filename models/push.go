// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// PushOperation is a single queued mutation as sent to the server. For
// delete operations only TaskID and VectorClock are set.
type PushOperation struct {
	Type          OperationKind `json:"type"`
	TaskID        string        `json:"taskId"`
	EncryptedBlob string        `json:"encryptedBlob,omitempty"`
	Nonce         string        `json:"nonce,omitempty"`
	VectorClock   VectorClock   `json:"vectorClock"`
	Checksum      string        `json:"checksum,omitempty"`
}

// PushRequest uploads a batch of local mutations.
type PushRequest struct {
	DeviceID          string          `json:"deviceId"`
	Operations        []PushOperation `json:"operations"`
	ClientVectorClock VectorClock     `json:"clientVectorClock"`
}

// RejectReason explains why the server refused a single operation.
type RejectReason string

const (
	RejectVersionMismatch RejectReason = "version_mismatch"
	RejectConflict        RejectReason = "conflict"
	RejectValidationError RejectReason = "validation_error"
	RejectQuotaExceeded   RejectReason = "quota_exceeded"
)

// RejectedOperation is a per-operation refusal. It never aborts the sync.
type RejectedOperation struct {
	TaskID  string       `json:"taskId"`
	Reason  RejectReason `json:"reason"`
	Details string       `json:"details,omitempty"`
}

// PushResponse is the server verdict for a PushRequest.
type PushResponse struct {
	Accepted          []string            `json:"accepted"`
	Rejected          []RejectedOperation `json:"rejected"`
	Conflicts         []ConflictInfo      `json:"conflicts"`
	ServerVectorClock VectorClock         `json:"serverVectorClock"`
}
