// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks tasks and pending operations against the entity
// schema shared by all devices.
//
// [TaskValidator] guards both ends of a sync: a local mutation is validated
// before it is queued, and a remote task after it has been decrypted. Callers
// may pass field names (see the Field* constants) to validate a subset.
package validators

import "context"

// Validator validates a value, optionally restricted to the named fields.
// Unsupported value types yield ErrUnsupportedType.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
