package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/models"
)

type syncConfigRepository struct {
	*DB
	logger *logger.Logger
}

// NewSyncConfigRepository returns the sqlite-backed single-row config store.
// The record is kept as a JSON document; schema upgrades happen in the
// service layer when the record is loaded.
func NewSyncConfigRepository(db *DB, logger *logger.Logger) SyncConfigRepository {
	return &syncConfigRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *syncConfigRepository) Load(ctx context.Context) (models.SyncConfig, error) {
	query, args, err := buildSelectSyncConfigQuery()
	if err != nil {
		return models.SyncConfig{}, err
	}

	var data string
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncConfig{}, ErrSyncConfigNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncConfigRepository.Load").Msg("failed to query sync config")
		return models.SyncConfig{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var cfg models.SyncConfig
	if err = decodeColumn(data, &cfg); err != nil {
		return models.SyncConfig{}, err
	}

	return cfg, nil
}

func (r *syncConfigRepository) Save(ctx context.Context, cfg models.SyncConfig) error {
	data, err := encodeColumn(cfg)
	if err != nil {
		return err
	}

	query, args, err := buildUpsertSyncConfigQuery(cfg.SchemaVersion, data, toUnixNano(time.Now()))
	if err != nil {
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncConfigRepository.Save").Msg("failed to persist sync config")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
