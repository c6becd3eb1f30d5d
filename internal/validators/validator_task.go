// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/MKhiriev/go-task-sync/models"
)

// TaskValidator implements the Validator interface for the synchronized
// entity and the queue records that carry it: Task and PendingOperation.
//
// Pulled tasks are validated after decryption, so a device running an older
// schema rejects what it cannot represent instead of storing it half-parsed.
type TaskValidator struct {
}

// NewTaskValidator constructs a new TaskValidator and returns it as the
// Validator interface.
func NewTaskValidator() Validator {
	return &TaskValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted.
//
// Returns ErrUnsupportedType if obj is neither a task nor a pending
// operation. Optional fields restrict validation to the named subset.
func (v *TaskValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Task:
		return v.validateTask(ctx, value, fields...)
	case *models.Task:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateTask(ctx, *value, fields...)

	case models.PendingOperation:
		return v.validateOperation(ctx, value, fields...)
	case *models.PendingOperation:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateOperation(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *TaskValidator) validateTask(_ context.Context, task models.Task, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldTags, FieldTimestamps, FieldVectorClock}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if !validID(task.ID) {
				return ErrInvalidTaskID
			}
		case FieldTitle:
			if task.Title == "" {
				return ErrEmptyTitle
			}
			if utf8.RuneCountInString(task.Title) > maxTitleLength {
				return ErrTitleTooLong
			}
		case FieldDescription:
			if utf8.RuneCountInString(task.Description) > maxDescriptionLength {
				return ErrDescriptionTooLong
			}
		case FieldStatus:
			if !slices.Contains(allowedStatuses, task.Status) {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, task.Status)
			}
		case FieldPriority:
			if !slices.Contains(allowedPriorities, task.Priority) {
				return fmt.Errorf("%w: %q", ErrInvalidPriority, task.Priority)
			}
		case FieldTags:
			if len(task.Tags) > maxTags {
				return ErrTooManyTags
			}
		case FieldTimestamps:
			if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
				return ErrInvalidTimestamps
			}
			if task.UpdatedAt.Before(task.CreatedAt) {
				return ErrInvalidTimestamps
			}
		case FieldVectorClock:
			if err := validateClock(task.VectorClock); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *TaskValidator) validateOperation(ctx context.Context, op models.PendingOperation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldKind, FieldPayload, FieldVectorClock}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if op.ID == "" || !validID(op.EntityID) {
				return ErrInvalidTaskID
			}
		case FieldKind:
			if !slices.Contains(allowedOperationKinds, op.Kind) {
				return fmt.Errorf("%w: %q", ErrInvalidOperationKind, op.Kind)
			}
		case FieldPayload:
			if (op.Kind == models.OperationDelete) != (op.Payload == nil) {
				return ErrInvalidPayload
			}
			if op.Payload != nil {
				if op.Payload.ID != op.EntityID {
					return ErrInvalidPayload
				}
				if err := v.validateTask(ctx, *op.Payload); err != nil {
					return fmt.Errorf("payload: %w", err)
				}
			}
		case FieldVectorClock:
			if err := validateClock(op.VectorClock); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validID(id string) bool {
	return id != "" && len(id) <= maxIDLength
}

func validateClock(clock models.VectorClock) error {
	for device, counter := range clock {
		if device == "" {
			return fmt.Errorf("%w: empty device id", ErrInvalidVectorClock)
		}
		if counter < 0 {
			return fmt.Errorf("%w: negative counter for %s", ErrInvalidVectorClock, device)
		}
	}
	return nil
}
