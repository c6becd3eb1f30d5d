// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// VectorClock maps a device identifier to a monotonically non-decreasing
// counter. A missing entry means the counter is 0. Entries are never removed,
// only merged or incremented (see package vclock).
type VectorClock map[string]int64

// Clone returns an independent copy of the clock. A nil clock clones to an
// empty, non-nil map.
func (c VectorClock) Clone() VectorClock {
	out := make(VectorClock, len(c))
	for device, counter := range c {
		out[device] = counter
	}
	return out
}

// Get returns the counter for device, 0 if absent.
func (c VectorClock) Get(device string) int64 {
	return c[device]
}
