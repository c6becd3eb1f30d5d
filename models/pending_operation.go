// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// OperationKind is the type of local mutation recorded in the queue.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// PendingOperation is a local mutation not yet acknowledged by the server.
//
// Payload is nil if and only if Kind is OperationDelete. Operations are owned
// exclusively by the queue; the optimizer may merge operations for the same
// EntityID but never across entities.
type PendingOperation struct {
	ID         string        `json:"id"`
	EntityID   string        `json:"entity_id"`
	Kind       OperationKind `json:"kind"`
	Timestamp  time.Time     `json:"timestamp"`
	RetryCount int           `json:"retry_count"`
	Payload    *Task         `json:"payload,omitempty"`

	// VectorClock is the entity clock at the time of the mutation.
	VectorClock VectorClock `json:"vector_clock"`

	// ConsolidatedFrom lists ids of operations absorbed into this one.
	ConsolidatedFrom []string `json:"consolidated_from,omitempty"`
}

// Clone returns a deep copy of the operation.
func (o PendingOperation) Clone() PendingOperation {
	out := o
	out.VectorClock = o.VectorClock.Clone()
	if o.Payload != nil {
		p := o.Payload.Clone()
		out.Payload = &p
	}
	if o.ConsolidatedFrom != nil {
		out.ConsolidatedFrom = append([]string(nil), o.ConsolidatedFrom...)
	}
	return out
}
