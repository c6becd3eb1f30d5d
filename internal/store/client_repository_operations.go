package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/models"
)

type pendingOperationRepository struct {
	*DB
	logger *logger.Logger
}

// NewPendingOperationRepository returns the sqlite-backed operation queue.
func NewPendingOperationRepository(db *DB, logger *logger.Logger) PendingOperationRepository {
	return &pendingOperationRepository{
		DB:     db,
		logger: logger,
	}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *pendingOperationRepository) Add(ctx context.Context, op models.PendingOperation) error {
	log := logger.FromContext(ctx)

	if err := r.insert(ctx, r.DB.DB, op, false); err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.Add").
			Str("operation_id", op.ID).
			Str("entity_id", op.EntityID).
			Msg("failed to persist pending operation")
		return err
	}

	return nil
}

func (r *pendingOperationRepository) insert(ctx context.Context, ex execer, op models.PendingOperation, replace bool) error {
	row, err := operationToRow(op)
	if err != nil {
		return err
	}

	query, args, err := buildInsertOperationQuery(row, replace)
	if err != nil {
		return err
	}

	if _, err = ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w (operation_id=%s): %w", ErrExecutingStatement, op.ID, err)
	}

	return nil
}

func (r *pendingOperationRepository) List(ctx context.Context) ([]models.PendingOperation, error) {
	return r.list(ctx, "")
}

func (r *pendingOperationRepository) ListByEntity(ctx context.Context, entityID string) ([]models.PendingOperation, error) {
	return r.list(ctx, entityID)
}

func (r *pendingOperationRepository) list(ctx context.Context, entityID string) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectOperationsQuery(entityID)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.list").
			Str("entity_id", entityID).
			Msg("failed to query pending operations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ops []models.PendingOperation
	for rows.Next() {
		var row operationRow
		if err = rows.Scan(
			&row.id,
			&row.entityID,
			&row.kind,
			&row.timestamp,
			&row.retryCount,
			&row.payload,
			&row.vectorClock,
			&row.consolidatedFrom,
		); err != nil {
			log.Err(err).Str("func", "pendingOperationRepository.list").Msg("failed to scan pending operation row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		op, err := rowToOperation(row)
		if err != nil {
			log.Err(err).
				Str("func", "pendingOperationRepository.list").
				Str("operation_id", row.id).
				Msg("failed to decode pending operation")
			return nil, err
		}
		ops = append(ops, op)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return ops, nil
}

func (r *pendingOperationRepository) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := buildDeleteOperationsQuery(ids)
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.Remove").
			Strs("operation_ids", ids).
			Msg("failed to delete pending operations")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *pendingOperationRepository) RemoveByEntity(ctx context.Context, entityIDs ...string) (int, error) {
	if len(entityIDs) == 0 {
		return 0, nil
	}

	query, args, err := buildDeleteOperationsByEntityQuery(entityIDs)
	if err != nil {
		return 0, err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.RemoveByEntity").
			Strs("entity_ids", entityIDs).
			Msg("failed to delete pending operations by entity")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return int(n), nil
}

func (r *pendingOperationRepository) IncrementRetry(ctx context.Context, id string) error {
	query, args, err := buildIncrementRetryQuery(id)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.IncrementRetry").
			Str("operation_id", id).
			Msg("failed to bump retry counter")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOperationNotFound
	}

	return nil
}

func (r *pendingOperationRepository) Consolidate(ctx context.Context, keep models.PendingOperation, removeIDs []string) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.insert(ctx, tx, keep, true); err != nil {
			return err
		}

		if len(removeIDs) == 0 {
			return nil
		}

		query, args, err := buildDeleteOperationsQuery(removeIDs)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.Consolidate").
			Str("keep_id", keep.ID).
			Strs("remove_ids", removeIDs).
			Msg("failed to consolidate pending operations")
		return err
	}

	return nil
}

func (r *pendingOperationRepository) Count(ctx context.Context) (int, error) {
	query, args, err := buildCountOperationsQuery()
	if err != nil {
		return 0, err
	}

	var n int
	if err = r.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return n, nil
}

func (r *pendingOperationRepository) Clear(ctx context.Context) error {
	query, args, err := buildClearOperationsQuery()
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "pendingOperationRepository.Clear").Msg("failed to clear queue")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
