// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// TaskStatus is the workflow column a task belongs to.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority is the urgency/importance bucket of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is the entity synchronized between devices. On the wire it only ever
// travels encrypted (see EncryptedTask); locally it is stored in plain form.
type Task struct {
	// ID is the client-generated identifier, stable across devices.
	ID string `json:"id"`

	// Title is the short human-readable name of the task.
	Title string `json:"title"`

	// Description is an optional free-form body.
	Description string `json:"description,omitempty"`

	Status   TaskStatus   `json:"status"`
	Priority TaskPriority `json:"priority"`

	// DueDate is optional.
	DueDate *time.Time `json:"due_date,omitempty"`

	Tags []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the wall-clock time of the last local modification and
	// is the last-write-wins arbitration key.
	UpdatedAt time.Time `json:"updated_at"`

	// VectorClock tracks causality of modifications to this task.
	VectorClock VectorClock `json:"vector_clock"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.VectorClock = t.VectorClock.Clone()
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	return out
}
