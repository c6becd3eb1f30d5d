package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-task-sync/models"
)

// operationRow is the column representation of a pending operation.
type operationRow struct {
	id               string
	entityID         string
	kind             string
	timestamp        int64
	retryCount       int
	payload          sql.NullString
	vectorClock      string
	consolidatedFrom string
}

type historyRow struct {
	status            string
	priority          string
	pushed            int
	pulled            int
	conflictsResolved int
	err               string
	errCategory       string
	createdAt         int64
}

func encodeColumn(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingColumn, err)
	}
	return string(b), nil
}

func decodeColumn(s string, dst any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingColumn, err)
	}
	return nil
}

func toUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func operationToRow(op models.PendingOperation) (operationRow, error) {
	clock := op.VectorClock
	if clock == nil {
		clock = models.VectorClock{}
	}
	vc, err := encodeColumn(clock)
	if err != nil {
		return operationRow{}, err
	}

	from := op.ConsolidatedFrom
	if from == nil {
		from = []string{}
	}
	cf, err := encodeColumn(from)
	if err != nil {
		return operationRow{}, err
	}

	row := operationRow{
		id:               op.ID,
		entityID:         op.EntityID,
		kind:             string(op.Kind),
		timestamp:        toUnixNano(op.Timestamp),
		retryCount:       op.RetryCount,
		vectorClock:      vc,
		consolidatedFrom: cf,
	}

	if op.Payload != nil {
		payload, err := encodeColumn(op.Payload)
		if err != nil {
			return operationRow{}, err
		}
		row.payload = sql.NullString{String: payload, Valid: true}
	}

	return row, nil
}

func rowToOperation(row operationRow) (models.PendingOperation, error) {
	op := models.PendingOperation{
		ID:          row.id,
		EntityID:    row.entityID,
		Kind:        models.OperationKind(row.kind),
		Timestamp:   fromUnixNano(row.timestamp),
		RetryCount:  row.retryCount,
		VectorClock: models.VectorClock{},
	}

	if err := decodeColumn(row.vectorClock, &op.VectorClock); err != nil {
		return models.PendingOperation{}, err
	}
	if err := decodeColumn(row.consolidatedFrom, &op.ConsolidatedFrom); err != nil {
		return models.PendingOperation{}, err
	}
	if len(op.ConsolidatedFrom) == 0 {
		op.ConsolidatedFrom = nil
	}

	if row.payload.Valid {
		var task models.Task
		if err := decodeColumn(row.payload.String, &task); err != nil {
			return models.PendingOperation{}, err
		}
		op.Payload = &task
	}

	return op, nil
}
