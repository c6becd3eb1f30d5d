package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

type queuedOp struct {
	kind  models.OperationKind
	title string
	clock models.VectorClock
}

func enqueueAll(t *testing.T, h *harness, entityID string, ops []queuedOp) []models.PendingOperation {
	t.Helper()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]models.PendingOperation, 0, len(ops))
	for i, q := range ops {
		var payload *models.Task
		if q.kind != models.OperationDelete {
			task := newTask(entityID, q.title, base.Add(time.Duration(i)*time.Minute), q.clock)
			payload = &task
		}
		op, err := h.queue.Enqueue(context.Background(), q.kind, entityID, payload, q.clock)
		require.NoError(t, err)
		out = append(out, op)
	}
	return out
}

func TestQueueOptimizer_ConsolidateAll(t *testing.T) {
	tests := []struct {
		name        string
		ops         []queuedOp
		wantKind    models.OperationKind
		wantKeepIdx int
		wantTitle   string
		wantClock   models.VectorClock
		wantRemoved int
	}{
		{
			name:        "single operation is left alone",
			ops:         []queuedOp{{models.OperationCreate, "a", models.VectorClock{"d": 1}}},
			wantKind:    models.OperationCreate,
			wantKeepIdx: 0,
			wantTitle:   "a",
			wantClock:   models.VectorClock{"d": 1},
		},
		{
			name: "create then updates keeps create with latest payload",
			ops: []queuedOp{
				{models.OperationCreate, "a", models.VectorClock{"d": 1}},
				{models.OperationUpdate, "b", models.VectorClock{"d": 2}},
				{models.OperationUpdate, "c", models.VectorClock{"d": 3, "e": 1}},
			},
			wantKind:    models.OperationCreate,
			wantKeepIdx: 0,
			wantTitle:   "c",
			wantClock:   models.VectorClock{"d": 3, "e": 1},
			wantRemoved: 2,
		},
		{
			name: "updates only keep the earliest with the latest payload",
			ops: []queuedOp{
				{models.OperationUpdate, "a", models.VectorClock{"d": 4}},
				{models.OperationUpdate, "b", models.VectorClock{"d": 5}},
			},
			wantKind:    models.OperationUpdate,
			wantKeepIdx: 0,
			wantTitle:   "b",
			wantClock:   models.VectorClock{"d": 5},
			wantRemoved: 1,
		},
		{
			name: "delete wins over create and updates",
			ops: []queuedOp{
				{models.OperationCreate, "a", models.VectorClock{"d": 1}},
				{models.OperationUpdate, "b", models.VectorClock{"d": 2}},
				{models.OperationDelete, "", models.VectorClock{"d": 3}},
			},
			wantKind:    models.OperationDelete,
			wantKeepIdx: 2,
			wantClock:   models.VectorClock{"d": 3},
			wantRemoved: 2,
		},
		{
			name: "delete survives a later update",
			ops: []queuedOp{
				{models.OperationUpdate, "a", models.VectorClock{"d": 1}},
				{models.OperationDelete, "", models.VectorClock{"d": 2}},
				{models.OperationUpdate, "b", models.VectorClock{"d": 3}},
			},
			wantKind:    models.OperationDelete,
			wantKeepIdx: 1,
			wantClock:   models.VectorClock{"d": 2},
			wantRemoved: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()

			queued := enqueueAll(t, h, "task-1", tt.ops)
			optimizer := NewQueueOptimizer(h.storages.Operations, h.log)

			removed, err := optimizer.ConsolidateAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)

			ops := h.pending(t)
			require.Len(t, ops, 1)
			got := ops[0]

			assert.Equal(t, queued[tt.wantKeepIdx].ID, got.ID)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantClock, got.VectorClock)
			assert.Len(t, got.ConsolidatedFrom, tt.wantRemoved)

			if tt.wantKind == models.OperationDelete {
				assert.Nil(t, got.Payload)
				return
			}
			require.NotNil(t, got.Payload)
			assert.Equal(t, tt.wantTitle, got.Payload.Title)
			assert.Equal(t, queued[len(queued)-1].Timestamp, got.Timestamp)
		})
	}
}

func TestQueueOptimizer_ConsolidateAll_NoDuplicateEntities(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	enqueueAll(t, h, "task-a", []queuedOp{
		{models.OperationCreate, "a1", models.VectorClock{"d": 1}},
		{models.OperationUpdate, "a2", models.VectorClock{"d": 2}},
	})
	enqueueAll(t, h, "task-b", []queuedOp{
		{models.OperationUpdate, "b1", models.VectorClock{"d": 1}},
		{models.OperationDelete, "", models.VectorClock{"d": 2}},
	})
	enqueueAll(t, h, "task-c", []queuedOp{
		{models.OperationUpdate, "c1", models.VectorClock{"d": 1}},
	})

	removed, err := NewQueueOptimizer(h.storages.Operations, h.log).ConsolidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	seen := make(map[string]models.OperationKind)
	for _, op := range h.pending(t) {
		_, dup := seen[op.EntityID]
		require.False(t, dup, "entity %s queued twice", op.EntityID)
		seen[op.EntityID] = op.Kind
	}
	assert.Equal(t, map[string]models.OperationKind{
		"task-a": models.OperationCreate,
		"task-b": models.OperationDelete,
		"task-c": models.OperationUpdate,
	}, seen)
}

func TestQueueOptimizer_ConsolidateAll_AccumulatesAbsorbedIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	optimizer := NewQueueOptimizer(h.storages.Operations, h.log)

	first := enqueueAll(t, h, "task-1", []queuedOp{
		{models.OperationUpdate, "a", models.VectorClock{"d": 1}},
		{models.OperationUpdate, "b", models.VectorClock{"d": 2}},
	})
	_, err := optimizer.ConsolidateAll(ctx)
	require.NoError(t, err)

	second := enqueueAll(t, h, "task-1", []queuedOp{
		{models.OperationUpdate, "c", models.VectorClock{"d": 3}},
	})
	_, err = optimizer.ConsolidateAll(ctx)
	require.NoError(t, err)

	ops := h.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, first[0].ID, ops[0].ID)
	assert.ElementsMatch(t, []string{first[1].ID, second[0].ID}, ops[0].ConsolidatedFrom)
}

// brokenConsolidate ignores Consolidate so the post-condition check fires.
type brokenConsolidate struct {
	store.PendingOperationRepository
}

func (brokenConsolidate) Consolidate(context.Context, models.PendingOperation, []string) error {
	return nil
}

func TestQueueOptimizer_ConsolidateAll_InvariantViolation(t *testing.T) {
	h := newHarness(t)
	enqueueAll(t, h, "task-1", []queuedOp{
		{models.OperationUpdate, "a", models.VectorClock{"d": 1}},
		{models.OperationUpdate, "b", models.VectorClock{"d": 2}},
	})

	optimizer := NewQueueOptimizer(brokenConsolidate{h.storages.Operations}, h.log)
	_, err := optimizer.ConsolidateAll(context.Background())
	require.ErrorIs(t, err, ErrConsolidationInvariant)
	assert.Equal(t, models.ErrorCategoryPermanent, ClassifyError(err))
}
