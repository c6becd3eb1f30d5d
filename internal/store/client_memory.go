package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/MKhiriev/go-task-sync/models"
)

// memoryOperations is a process-local PendingOperationRepository. It keeps
// the same ordering contract as the sqlite implementation and is used by
// tests and by the daemon when no DSN is configured.
type memoryOperations struct {
	mu  sync.RWMutex
	ops map[string]models.PendingOperation
}

// NewMemoryPendingOperationRepository returns an empty in-memory queue.
func NewMemoryPendingOperationRepository() PendingOperationRepository {
	return &memoryOperations{ops: make(map[string]models.PendingOperation)}
}

func (m *memoryOperations) Add(_ context.Context, op models.PendingOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ops[op.ID] = op.Clone()
	return nil
}

func (m *memoryOperations) List(_ context.Context) ([]models.PendingOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(""), nil
}

func (m *memoryOperations) ListByEntity(_ context.Context, entityID string) ([]models.PendingOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(entityID), nil
}

func (m *memoryOperations) sorted(entityID string) []models.PendingOperation {
	out := make([]models.PendingOperation, 0, len(m.ops))
	for _, op := range m.ops {
		if entityID != "" && op.EntityID != entityID {
			continue
		}
		out = append(out, op.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}

func (m *memoryOperations) Remove(_ context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.ops, id)
	}
	return nil
}

func (m *memoryOperations) RemoveByEntity(_ context.Context, entityIDs ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, op := range m.ops {
		if slices.Contains(entityIDs, op.EntityID) {
			delete(m.ops, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryOperations) IncrementRetry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.ops[id]
	if !ok {
		return ErrOperationNotFound
	}
	op.RetryCount++
	m.ops[id] = op
	return nil
}

func (m *memoryOperations) Consolidate(_ context.Context, keep models.PendingOperation, removeIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range removeIDs {
		delete(m.ops, id)
	}
	m.ops[keep.ID] = keep.Clone()
	return nil
}

func (m *memoryOperations) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.ops), nil
}

func (m *memoryOperations) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ops = make(map[string]models.PendingOperation)
	return nil
}

type memoryTasks struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

// NewMemoryTaskRepository returns an empty in-memory task store.
func NewMemoryTaskRepository() TaskRepository {
	return &memoryTasks{tasks: make(map[string]models.Task)}
}

func (m *memoryTasks) Get(_ context.Context, id string) (models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (m *memoryTasks) Put(_ context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks[task.ID] = task.Clone()
	return nil
}

func (m *memoryTasks) BulkDelete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.tasks, id)
	}
	return nil
}

func (m *memoryTasks) ListAll(_ context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, task.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memorySyncConfig struct {
	mu  sync.RWMutex
	cfg *models.SyncConfig
}

// NewMemorySyncConfigRepository returns a config store with no record.
func NewMemorySyncConfigRepository() SyncConfigRepository {
	return &memorySyncConfig{}
}

func (m *memorySyncConfig) Load(_ context.Context) (models.SyncConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cfg == nil {
		return models.SyncConfig{}, ErrSyncConfigNotFound
	}
	return m.cfg.Clone(), nil
}

func (m *memorySyncConfig) Save(_ context.Context, cfg models.SyncConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := cfg.Clone()
	m.cfg = &c
	return nil
}

type memoryHistory struct {
	mu       sync.Mutex
	results  []models.SyncResult
	capacity int
}

// NewMemorySyncHistoryRepository keeps at most capacity results, dropping the
// oldest first. A non-positive capacity keeps 100.
func NewMemorySyncHistoryRepository(capacity int) SyncHistoryRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &memoryHistory{capacity: capacity}
}

func (m *memoryHistory) Append(_ context.Context, result models.SyncResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result.Conflicts = nil
	m.results = append(m.results, result)
	if len(m.results) > m.capacity {
		m.results = m.results[len(m.results)-m.capacity:]
	}
	return nil
}

func (m *memoryHistory) Recent(_ context.Context, limit int) ([]models.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.results)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]models.SyncResult, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}
