// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package vclock implements causality comparison and merging of vector
// clocks. All functions are pure: inputs are never mutated.
package vclock

import "github.com/MKhiriev/go-task-sync/models"

// Ordering is the causal relation between two clocks.
type Ordering int

const (
	Identical Ordering = iota
	ABeforeB
	BBeforeA
	Concurrent
)

func (o Ordering) String() string {
	switch o {
	case Identical:
		return "identical"
	case ABeforeB:
		return "a_before_b"
	case BBeforeA:
		return "b_before_a"
	case Concurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}

// Compare reports how a relates to b. Every device present in either clock is
// considered; an absent device counts as 0.
func Compare(a, b models.VectorClock) Ordering {
	aAhead, bAhead := false, false

	for device, av := range a {
		bv := b[device]
		if av > bv {
			aAhead = true
		} else if bv > av {
			bAhead = true
		}
	}
	for device, bv := range b {
		if _, seen := a[device]; seen {
			continue
		}
		if bv > 0 {
			bAhead = true
		}
	}

	switch {
	case aAhead && bAhead:
		return Concurrent
	case aAhead:
		return BBeforeA
	case bAhead:
		return ABeforeB
	default:
		return Identical
	}
}

// Merge returns the pointwise maximum of all given clocks over the union of
// their keys.
func Merge(clocks ...models.VectorClock) models.VectorClock {
	out := make(models.VectorClock)
	for _, c := range clocks {
		for device, counter := range c {
			if cur, ok := out[device]; !ok || counter > cur {
				out[device] = counter
			}
		}
	}
	return out
}

// Increment returns a copy of clock with deviceID's counter raised by one.
func Increment(clock models.VectorClock, deviceID string) models.VectorClock {
	out := clock.Clone()
	out[deviceID] = out[deviceID] + 1
	return out
}

// IsConcurrent is shorthand for Compare(a, b) == Concurrent.
func IsConcurrent(a, b models.VectorClock) bool {
	return Compare(a, b) == Concurrent
}

// Equal reports whether both clocks hold the same counters, treating absent
// entries as 0.
func Equal(a, b models.VectorClock) bool {
	return Compare(a, b) == Identical
}
