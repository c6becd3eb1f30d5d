package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/models"
)

type taskRepository struct {
	*DB
	logger *logger.Logger
}

// NewTaskRepository returns the sqlite-backed local task store. Tasks are
// stored as JSON documents with the vector clock and updated_at lifted into
// their own columns.
func NewTaskRepository(db *DB, logger *logger.Logger) TaskRepository {
	return &taskRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *taskRepository) Get(ctx context.Context, id string) (models.Task, error) {
	query, args, err := buildSelectTasksQuery(id)
	if err != nil {
		return models.Task{}, err
	}

	var data string
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "taskRepository.Get").
			Str("task_id", id).
			Msg("failed to query task")
		return models.Task{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var task models.Task
	if err = decodeColumn(data, &task); err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) Put(ctx context.Context, task models.Task) error {
	data, err := encodeColumn(task)
	if err != nil {
		return err
	}
	clock := task.VectorClock
	if clock == nil {
		clock = models.VectorClock{}
	}
	vc, err := encodeColumn(clock)
	if err != nil {
		return err
	}

	query, args, err := buildUpsertTaskQuery(task.ID, data, vc, toUnixNano(task.UpdatedAt))
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "taskRepository.Put").
			Str("task_id", task.ID).
			Msg("failed to upsert task")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *taskRepository) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := buildDeleteTasksQuery(ids)
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "taskRepository.BulkDelete").
			Strs("task_ids", ids).
			Msg("failed to delete tasks")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *taskRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	query, args, err := buildSelectTasksQuery("")
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "taskRepository.ListAll").Msg("failed to query tasks")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var data string
		if err = rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		var task models.Task
		if err = decodeColumn(data, &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return tasks, nil
}
