package store

import (
	"context"

	"github.com/MKhiriev/go-task-sync/models"
)

// PendingOperationRepository is the durable log of local mutations that the
// server has not acknowledged yet. Operations are keyed by id with a
// secondary index on entity id.
type PendingOperationRepository interface {
	// Add persists a new operation.
	Add(ctx context.Context, op models.PendingOperation) error
	// List returns all operations ordered by timestamp ascending.
	List(ctx context.Context) ([]models.PendingOperation, error)
	// ListByEntity returns the operations of one entity ordered by timestamp.
	ListByEntity(ctx context.Context, entityID string) ([]models.PendingOperation, error)
	// Remove deletes operations by id. Unknown ids are ignored.
	Remove(ctx context.Context, ids ...string) error
	// RemoveByEntity deletes every operation of the given entities and
	// returns the number of rows removed.
	RemoveByEntity(ctx context.Context, entityIDs ...string) (int, error)
	// IncrementRetry bumps the retry counter of a single operation.
	IncrementRetry(ctx context.Context, id string) error
	// Consolidate replaces keep and removes removeIDs in one transaction.
	Consolidate(ctx context.Context, keep models.PendingOperation, removeIDs []string) error
	// Count returns the number of queued operations.
	Count(ctx context.Context) (int, error)
	// Clear removes every queued operation.
	Clear(ctx context.Context) error
}

// TaskRepository is the local entity store the engine reads from and writes
// pulled or resolved tasks to.
type TaskRepository interface {
	Get(ctx context.Context, id string) (models.Task, error)
	Put(ctx context.Context, task models.Task) error
	BulkDelete(ctx context.Context, ids []string) error
	ListAll(ctx context.Context) ([]models.Task, error)
}

// SyncConfigRepository holds the single per-installation sync config record.
type SyncConfigRepository interface {
	// Load returns ErrSyncConfigNotFound if nothing was saved yet.
	Load(ctx context.Context) (models.SyncConfig, error)
	Save(ctx context.Context, cfg models.SyncConfig) error
}

// SyncHistoryRepository is a best-effort append-only log of sync outcomes.
type SyncHistoryRepository interface {
	Append(ctx context.Context, result models.SyncResult) error
	Recent(ctx context.Context, limit int) ([]models.SyncResult, error)
}
