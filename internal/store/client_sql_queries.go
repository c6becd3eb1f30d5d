// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// sqlite uses '?' placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const (
	tableOperations = "pending_operations"
	tableTasks      = "tasks"
	tableSyncConfig = "sync_config"
	tableHistory    = "sync_history"
)

var operationColumns = []string{
	"id",
	"entity_id",
	"kind",
	"timestamp",
	"retry_count",
	"payload",
	"vector_clock",
	"consolidated_from",
}

var historyColumns = []string{
	"status",
	"priority",
	"pushed",
	"pulled",
	"conflicts_resolved",
	"error",
	"error_category",
	"created_at",
}

func wrapBuild(query string, args []any, err error) (string, []any, error) {
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// ── pending_operations ────────────────────────────────────────────────────────

func buildInsertOperationQuery(row operationRow, replace bool) (string, []any, error) {
	q := builder.Insert(tableOperations).
		Columns(operationColumns...).
		Values(row.id, row.entityID, row.kind, row.timestamp, row.retryCount, row.payload, row.vectorClock, row.consolidatedFrom)
	if replace {
		q = q.Options("OR REPLACE")
	}
	return wrapBuild(q.ToSql())
}

func buildSelectOperationsQuery(entityID string) (string, []any, error) {
	q := builder.Select(operationColumns...).From(tableOperations)
	if entityID != "" {
		q = q.Where(sq.Eq{"entity_id": entityID})
	}
	return wrapBuild(q.OrderBy("timestamp ASC", "id ASC").ToSql())
}

func buildDeleteOperationsQuery(ids []string) (string, []any, error) {
	return wrapBuild(builder.Delete(tableOperations).Where(sq.Eq{"id": ids}).ToSql())
}

func buildDeleteOperationsByEntityQuery(entityIDs []string) (string, []any, error) {
	return wrapBuild(builder.Delete(tableOperations).Where(sq.Eq{"entity_id": entityIDs}).ToSql())
}

func buildIncrementRetryQuery(id string) (string, []any, error) {
	return wrapBuild(builder.Update(tableOperations).
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql())
}

func buildCountOperationsQuery() (string, []any, error) {
	return wrapBuild(builder.Select("COUNT(*)").From(tableOperations).ToSql())
}

func buildClearOperationsQuery() (string, []any, error) {
	return wrapBuild(builder.Delete(tableOperations).ToSql())
}

// ── tasks ─────────────────────────────────────────────────────────────────────

func buildUpsertTaskQuery(id, data, clock string, updatedAt int64) (string, []any, error) {
	return wrapBuild(builder.Insert(tableTasks).
		Options("OR REPLACE").
		Columns("id", "data", "vector_clock", "updated_at").
		Values(id, data, clock, updatedAt).
		ToSql())
}

func buildSelectTasksQuery(id string) (string, []any, error) {
	q := builder.Select("data").From(tableTasks)
	if id != "" {
		q = q.Where(sq.Eq{"id": id})
	}
	return wrapBuild(q.OrderBy("updated_at ASC", "id ASC").ToSql())
}

func buildDeleteTasksQuery(ids []string) (string, []any, error) {
	return wrapBuild(builder.Delete(tableTasks).Where(sq.Eq{"id": ids}).ToSql())
}

// ── sync_config ───────────────────────────────────────────────────────────────

func buildUpsertSyncConfigQuery(schemaVersion int, data string, updatedAt int64) (string, []any, error) {
	return wrapBuild(builder.Insert(tableSyncConfig).
		Options("OR REPLACE").
		Columns("id", "schema_version", "data", "updated_at").
		Values(1, schemaVersion, data, updatedAt).
		ToSql())
}

func buildSelectSyncConfigQuery() (string, []any, error) {
	return wrapBuild(builder.Select("data").From(tableSyncConfig).Where(sq.Eq{"id": 1}).ToSql())
}

// ── sync_history ──────────────────────────────────────────────────────────────

func buildInsertHistoryQuery(row historyRow) (string, []any, error) {
	return wrapBuild(builder.Insert(tableHistory).
		Columns(historyColumns...).
		Values(row.status, row.priority, row.pushed, row.pulled, row.conflictsResolved, row.err, row.errCategory, row.createdAt).
		ToSql())
}

func buildSelectHistoryQuery(limit int) (string, []any, error) {
	q := builder.Select(historyColumns...).From(tableHistory).OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return wrapBuild(q.ToSql())
}
