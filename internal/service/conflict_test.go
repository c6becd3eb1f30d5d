// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

func TestResolveConflict(t *testing.T) {
	t1 := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	localClock := models.VectorClock{"a": 2, "b": 1}
	remoteClock := models.VectorClock{"a": 1, "b": 2}
	merged := models.VectorClock{"a": 2, "b": 2}

	tests := []struct {
		name        string
		localAt     time.Time
		remoteAt    time.Time
		wantTitle   string
		useInfoClks bool
	}{
		{name: "later remote wins", localAt: t1, remoteAt: t2, wantTitle: "remote"},
		{name: "later local wins", localAt: t2, remoteAt: t1, wantTitle: "local"},
		{name: "tie goes to remote", localAt: t1, remoteAt: t1, wantTitle: "remote"},
		{name: "clocks from conflict info", localAt: t1, remoteAt: t2, wantTitle: "remote", useInfoClks: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := newTask("task-1", "local", tt.localAt, localClock)
			remote := newTask("task-1", "remote", tt.remoteAt, remoteClock)
			info := models.ConflictInfo{EntityID: "task-1", Local: &local, Remote: &remote}
			if tt.useInfoClks {
				local.VectorClock = nil
				remote.VectorClock = nil
				info.LocalClock = localClock
				info.RemoteClock = remoteClock
			}

			winner := ResolveConflict(info)
			assert.Equal(t, tt.wantTitle, winner.Title)
			assert.Equal(t, merged, winner.VectorClock)
		})
	}
}

func TestResolveConflict_DoesNotMutateInputs(t *testing.T) {
	now := time.Now().UTC()
	local := newTask("task-1", "local", now, models.VectorClock{"a": 1})
	remote := newTask("task-1", "remote", now.Add(time.Second), models.VectorClock{"b": 1})

	ResolveConflict(models.ConflictInfo{EntityID: "task-1", Local: &local, Remote: &remote})

	assert.Equal(t, models.VectorClock{"a": 1}, local.VectorClock)
	assert.Equal(t, models.VectorClock{"b": 1}, remote.VectorClock)
}

func TestConflictResolver_Resolve(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	resolver := NewConflictResolver(h.storages.Tasks, h.queue, h.log)

	t1 := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	remoteNewerLocal := newTask("remote-wins", "mine", t1, models.VectorClock{"a": 2, "b": 1})
	remoteNewer := newTask("remote-wins", "theirs", t2, models.VectorClock{"a": 1, "b": 2})

	localNewer := newTask("local-wins", "mine", t2, models.VectorClock{"a": 2})
	localNewerRemote := newTask("local-wins", "theirs", t1, models.VectorClock{"b": 1})

	orphan := newTask("orphan", "theirs", t1, nil)

	stale := remoteNewerLocal.Clone()
	_, err := h.queue.Enqueue(ctx, models.OperationUpdate, stale.ID, &stale, stale.VectorClock)
	require.NoError(t, err)

	resolved, err := resolver.Resolve(ctx, []models.ConflictInfo{
		{EntityID: "remote-wins", Local: &remoteNewerLocal, Remote: &remoteNewer},
		{EntityID: "local-wins", Local: &localNewer, Remote: &localNewerRemote},
		{EntityID: "orphan", Remote: &orphan},
		{EntityID: "server-only"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	got, err := h.storages.Tasks.Get(ctx, "remote-wins")
	require.NoError(t, err)
	assert.Equal(t, "theirs", got.Title)
	assert.Equal(t, models.VectorClock{"a": 2, "b": 2}, got.VectorClock)

	got, err = h.storages.Tasks.Get(ctx, "local-wins")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
	assert.Equal(t, models.VectorClock{"a": 2, "b": 1}, got.VectorClock)

	_, err = h.storages.Tasks.Get(ctx, "orphan")
	assert.Error(t, err, "conflicts without both sides are skipped")

	// only the local winner has to travel to the server again
	ops := h.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, "local-wins", ops[0].EntityID)
	assert.Equal(t, models.OperationUpdate, ops[0].Kind)
	assert.Equal(t, models.VectorClock{"a": 2, "b": 1}, ops[0].VectorClock)
}

// Two devices edit the same task offline from a shared base.
func TestConflictResolver_TwoDeviceScenario(t *testing.T) {
	base := models.VectorClock{"deviceA": 1, "deviceB": 1}
	onA := vclock.Increment(base, "deviceA")
	onB := vclock.Increment(base, "deviceB")

	require.Equal(t, models.VectorClock{"deviceA": 2, "deviceB": 1}, onA)
	require.Equal(t, models.VectorClock{"deviceA": 1, "deviceB": 2}, onB)
	require.Equal(t, vclock.Concurrent, vclock.Compare(onA, onB))

	t1 := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	local := newTask("task-1", "edited on A", t1, onA)
	remote := newTask("task-1", "edited on B", t1.Add(30*time.Second), onB)

	winner := ResolveConflict(models.ConflictInfo{EntityID: "task-1", Local: &local, Remote: &remote})
	assert.Equal(t, "edited on B", winner.Title)
	assert.Equal(t, models.VectorClock{"deviceA": 2, "deviceB": 2}, winner.VectorClock)
}
