package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/logger"
)

// ClientStorages groups all client-side repositories into a single value
// that can be passed around the service layer.
type ClientStorages struct {
	// Operations is the durable pending-operation queue.
	Operations PendingOperationRepository
	// Tasks is the local entity store.
	Tasks TaskRepository
	// Config holds the single sync config record.
	Config SyncConfigRepository
	// History is the best-effort log of sync outcomes.
	History SyncHistoryRepository

	db *DB
}

// NewClientStorages opens the sqlite database at cfg.DB.DSN (creating the
// file if needed), applies migrations and wires every repository to the same
// connection.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Operations: NewPendingOperationRepository(db, logger),
		Tasks:      NewTaskRepository(db, logger),
		Config:     NewSyncConfigRepository(db, logger),
		History:    NewSyncHistoryRepository(db, logger),
		db:         db,
	}, nil
}

// NewMemoryClientStorages returns storages that live only for the lifetime
// of the process.
func NewMemoryClientStorages() *ClientStorages {
	return &ClientStorages{
		Operations: NewMemoryPendingOperationRepository(),
		Tasks:      NewMemoryTaskRepository(),
		Config:     NewMemorySyncConfigRepository(),
		History:    NewMemorySyncHistoryRepository(0),
	}
}

// Close releases the database connection, if any.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
