package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/validators"
	"github.com/MKhiriev/go-task-sync/internal/vclock"
	"github.com/MKhiriev/go-task-sync/models"
)

// TaskService applies local task mutations. Every mutation advances the
// task's vector clock for this device and, while sync is enabled, records
// the matching pending operation.
type TaskService struct {
	tasks     store.TaskRepository
	queue     *OperationQueue
	config    *ConfigStore
	validator validators.Validator
	ids       idGenerator
	notifier  changeNotifier
	now       func() time.Time

	logger *logger.Logger
}

// NewTaskService creates a task service. notifier may be nil.
func NewTaskService(tasks store.TaskRepository, queue *OperationQueue, config *ConfigStore, validator validators.Validator, ids idGenerator, notifier changeNotifier, logger *logger.Logger) *TaskService {
	return &TaskService{
		tasks:     tasks,
		queue:     queue,
		config:    config,
		validator: validator,
		ids:       ids,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger,
	}
}

// Create stores a new task. ID, timestamps, status and priority are filled
// in when empty.
func (s *TaskService) Create(ctx context.Context, task models.Task) (models.Task, error) {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	now := s.now().UTC()
	task = task.Clone()
	task.Title = strings.TrimSpace(task.Title)
	if task.ID == "" {
		task.ID = s.ids.Generate()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	task.VectorClock = vclock.Increment(nil, cfg.DeviceID)

	if err = s.save(ctx, cfg, models.OperationCreate, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update replaces the mutable fields of an existing task.
func (s *TaskService) Update(ctx context.Context, task models.Task) (models.Task, error) {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	existing, err := s.tasks.Get(ctx, task.ID)
	if err != nil {
		return models.Task{}, err
	}

	task = task.Clone()
	task.Title = strings.TrimSpace(task.Title)
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = later(s.now().UTC(), existing.UpdatedAt)
	task.VectorClock = vclock.Increment(existing.VectorClock, cfg.DeviceID)

	if err = s.save(ctx, cfg, models.OperationUpdate, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Delete removes a task locally and queues its deletion.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return err
	}

	existing, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = s.tasks.BulkDelete(ctx, []string{id}); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	clock := vclock.Increment(existing.VectorClock, cfg.DeviceID)
	return s.record(ctx, cfg, models.OperationDelete, id, nil, clock)
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id string) (models.Task, error) {
	return s.tasks.Get(ctx, id)
}

// List returns every local task.
func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	return s.tasks.ListAll(ctx)
}

func (s *TaskService) save(ctx context.Context, cfg models.SyncConfig, kind models.OperationKind, task models.Task) error {
	if err := s.validator.Validate(ctx, task); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if err := s.tasks.Put(ctx, task); err != nil {
		return fmt.Errorf("store task: %w", err)
	}

	payload := task.Clone()
	return s.record(ctx, cfg, kind, task.ID, &payload, task.VectorClock)
}

// record queues the operation while sync is enabled. With sync disabled the
// change stays local; enabling sync later picks it up from the task store.
func (s *TaskService) record(ctx context.Context, cfg models.SyncConfig, kind models.OperationKind, id string, payload *models.Task, clock models.VectorClock) error {
	if !cfg.Enabled {
		return nil
	}

	if _, err := s.queue.Enqueue(ctx, kind, id, payload, clock); err != nil {
		return fmt.Errorf("queue %s operation: %w", kind, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyChange()
	}
	return nil
}

// later keeps UpdatedAt monotonic for one task even if the wall clock steps
// back.
func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b.Add(time.Millisecond)
	}
	return a
}
