package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/models"
)

type syncHistoryRepository struct {
	*DB
	logger *logger.Logger
}

func NewSyncHistoryRepository(db *DB, logger *logger.Logger) SyncHistoryRepository {
	return &syncHistoryRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *syncHistoryRepository) Append(ctx context.Context, result models.SyncResult) error {
	query, args, err := buildInsertHistoryQuery(historyRow{
		status:            string(result.Status),
		priority:          string(result.Priority),
		pushed:            result.Pushed,
		pulled:            result.Pulled,
		conflictsResolved: result.ConflictsResolved,
		err:               result.Error,
		errCategory:       string(result.ErrorCategory),
		createdAt:         toUnixNano(result.Timestamp),
	})
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *syncHistoryRepository) Recent(ctx context.Context, limit int) ([]models.SyncResult, error) {
	query, args, err := buildSelectHistoryQuery(limit)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var results []models.SyncResult
	for rows.Next() {
		var row historyRow
		if err = rows.Scan(
			&row.status,
			&row.priority,
			&row.pushed,
			&row.pulled,
			&row.conflictsResolved,
			&row.err,
			&row.errCategory,
			&row.createdAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		results = append(results, models.SyncResult{
			Status:            models.SyncStatus(row.status),
			Priority:          models.SyncPriority(row.priority),
			Pushed:            row.pushed,
			Pulled:            row.pulled,
			ConflictsResolved: row.conflictsResolved,
			Error:             row.err,
			ErrorCategory:     models.ErrorCategory(row.errCategory),
			Timestamp:         fromUnixNano(row.createdAt),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return results, nil
}
