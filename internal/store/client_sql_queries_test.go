// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildInsertOperationQuery(t *testing.T) {
	row := operationRow{id: "op-1", entityID: "task-1", kind: "create", timestamp: 10}

	tests := []struct {
		name    string
		replace bool
		prefix  string
	}{
		{name: "plain insert", replace: false, prefix: "INSERT INTO pending_operations"},
		{name: "replace", replace: true, prefix: "INSERT OR REPLACE INTO pending_operations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildInsertOperationQuery(row, tt.replace)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(query, tt.prefix), query)
			assert.Contains(t, query, "(id,entity_id,kind,timestamp,retry_count,payload,vector_clock,consolidated_from)")
			assert.Contains(t, query, "VALUES (?,?,?,?,?,?,?,?)")
			require.Len(t, args, 8)
			assert.Equal(t, "op-1", args[0])
			assert.Equal(t, "task-1", args[1])
		})
	}
}

func Test_buildSelectOperationsQuery(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		query, args, err := buildSelectOperationsQuery("")
		require.NoError(t, err)

		assert.Equal(t,
			"SELECT id, entity_id, kind, timestamp, retry_count, payload, vector_clock, consolidated_from FROM pending_operations ORDER BY timestamp ASC, id ASC",
			query)
		assert.Empty(t, args)
	})

	t.Run("by entity", func(t *testing.T) {
		query, args, err := buildSelectOperationsQuery("task-1")
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE entity_id = ?")
		assert.Equal(t, []any{"task-1"}, args)
	})
}

func Test_buildDeleteOperationsQuery(t *testing.T) {
	query, args, err := buildDeleteOperationsQuery([]string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM pending_operations WHERE id IN (?,?,?)", query)
	assert.Equal(t, []any{"a", "b", "c"}, args)
}

func Test_buildDeleteOperationsByEntityQuery(t *testing.T) {
	query, args, err := buildDeleteOperationsByEntityQuery([]string{"task-1"})
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM pending_operations WHERE entity_id IN (?)", query)
	assert.Equal(t, []any{"task-1"}, args)
}

func Test_buildIncrementRetryQuery(t *testing.T) {
	query, args, err := buildIncrementRetryQuery("op-1")
	require.NoError(t, err)

	assert.Equal(t, "UPDATE pending_operations SET retry_count = retry_count + 1 WHERE id = ?", query)
	assert.Equal(t, []any{"op-1"}, args)
}

func Test_buildUpsertSyncConfigQuery_SingleRow(t *testing.T) {
	query, args, err := buildUpsertSyncConfigQuery(3, "{}", 42)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT OR REPLACE INTO sync_config"), query)
	require.Len(t, args, 4)
	assert.Equal(t, 1, args[0])
	assert.Equal(t, 3, args[1])
}

func Test_buildSelectHistoryQuery(t *testing.T) {
	query, _, err := buildSelectHistoryQuery(10)
	require.NoError(t, err)
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, query, "LIMIT 10")

	query, _, err = buildSelectHistoryQuery(0)
	require.NoError(t, err)
	assert.NotContains(t, query, "LIMIT")
}
