// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/internal/utils"
	"github.com/MKhiriev/go-task-sync/internal/validators"
	"github.com/MKhiriev/go-task-sync/internal/workers"
	"github.com/MKhiriev/go-task-sync/models"
)

// unlocker is implemented by encryptors that derive their key from a
// passphrase, such as crypto.PassphraseEncryptor.
type unlocker interface {
	Unlock(passphrase string, salt []byte) error
}

// SyncService owns every component of the sync subsystem. It is created once
// at application start and its lifecycle is bound to Start and Stop.
type SyncService struct {
	config      *ConfigStore
	queue       *OperationQueue
	tokens      *TokenManager
	engine      *SyncEngine
	coordinator *SyncCoordinator
	health      *HealthMonitor
	background  *BackgroundSyncManager
	tasks       *TaskService

	tasksRepo  store.TaskRepository
	adapter    adapter.ServerAdapter
	encryptor  crypto.Encryptor
	passphrase string
	strategy   models.ConflictStrategy
	workers    *workers.Workers

	logger *logger.Logger
}

// NewSyncService wires the sync subsystem over the given storages,
// transport and encryptor.
func NewSyncService(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, encryptor crypto.Encryptor, cfg config.ClientConfig, logger *logger.Logger) *SyncService {
	ids := utils.NewUUIDGenerator()

	configStore := NewConfigStore(storages.Config, ids, cfg.App.DeviceName, logger.WithComponent("config"))
	queue := NewOperationQueue(storages.Operations, ids, logger.WithComponent("queue"))
	tokens := NewTokenManager(configStore, serverAdapter, logger.WithComponent("tokens"))
	validator := validators.NewTaskValidator()

	engine := NewSyncEngine(SyncEngineDeps{
		Config:    configStore,
		Queue:     queue,
		Optimizer: NewQueueOptimizer(storages.Operations, logger.WithComponent("optimizer")),
		Retry:     NewRetryManager(configStore, logger.WithComponent("retry")),
		Tokens:    tokens,
		Push:      NewPushHandler(queue, serverAdapter, encryptor, logger.WithComponent("push")),
		Pull:      NewPullHandler(serverAdapter, encryptor, storages.Tasks, queue, validator, cfg.Adapter.PullPageSize, logger.WithComponent("pull")),
		Resolver:  NewConflictResolver(storages.Tasks, queue, logger.WithComponent("resolver")),
		Encryptor: encryptor,
		History:   storages.History,
	}, logger.WithComponent("engine"))

	coordinator := NewSyncCoordinator(engine, logger.WithComponent("coordinator"))
	health := NewHealthMonitor(configStore, queue, tokens, serverAdapter, cfg.Workers.HealthCheckInterval, logger.WithComponent("health"))
	background := NewBackgroundSyncManager(coordinator, configStore, BackgroundSyncSettings{
		Interval:       cfg.Workers.SyncInterval,
		DebounceDelay:  cfg.Workers.DebounceDelay,
		MinAutoSyncGap: cfg.Workers.MinAutoSyncGap,
	}, logger.WithComponent("background"))

	health.OnConnectivityChange(background)

	return &SyncService{
		config:      configStore,
		queue:       queue,
		tokens:      tokens,
		engine:      engine,
		coordinator: coordinator,
		health:      health,
		background:  background,
		tasks:       NewTaskService(storages.Tasks, queue, configStore, validator, ids, background, logger.WithComponent("tasks")),
		tasksRepo:   storages.Tasks,
		adapter:     serverAdapter,
		encryptor:   encryptor,
		passphrase:  cfg.App.EncryptionPassphrase,
		strategy:    models.ConflictStrategy(cfg.App.ConflictStrategy),
		workers:     workers.NewWorkers(health, background),
		logger:      logger,
	}
}

// Tasks returns the local task mutation service.
func (s *SyncService) Tasks() *TaskService { return s.tasks }

// Background returns the automatic sync trigger, for forwarding visibility
// and connectivity events.
func (s *SyncService) Background() *BackgroundSyncManager { return s.background }

// Restore loads the persisted config and applies its server URL, token and
// encryption salt without starting any background work.
func (s *SyncService) Restore(ctx context.Context) (models.SyncConfig, error) {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return models.SyncConfig{}, fmt.Errorf("load sync config: %w", err)
	}

	if err = s.applyTransport(cfg); err != nil {
		return models.SyncConfig{}, err
	}
	s.unlock(cfg)

	return cfg, nil
}

// Start restores the transport state from the persisted config and starts
// the background workers.
func (s *SyncService) Start(ctx context.Context) error {
	cfg, err := s.Restore(ctx)
	if err != nil {
		return err
	}

	s.workers.Start(ctx)

	s.logger.Info().
		Str("func", "SyncService.Start").
		Bool("enabled", cfg.Enabled).
		Str("device_id", cfg.DeviceID).
		Int("workers", s.workers.Len()).
		Msg("sync service started")
	return nil
}

// Stop stops the background workers and waits for parked syncs to finish.
func (s *SyncService) Stop() {
	s.workers.Stop()
	s.coordinator.Wait()

	s.logger.Info().Str("func", "SyncService.Stop").Msg("sync service stopped")
}

// EnableSync implements SyncController.
func (s *SyncService) EnableSync(ctx context.Context, creds models.AuthCredentials) (models.SyncConfig, error) {
	creds.Token = strings.TrimSpace(creds.Token)
	creds.UserID = strings.TrimSpace(creds.UserID)
	if creds.Token == "" || creds.UserID == "" {
		return models.SyncConfig{}, fmt.Errorf("%w: token and user id are required", ErrInvalidCredentials)
	}

	if sub, err := utils.TokenSubject(creds.Token); err == nil && sub != "" && sub != creds.UserID {
		return models.SyncConfig{}, fmt.Errorf("%w: token subject %q does not match user id", ErrInvalidCredentials, sub)
	}
	strategy := creds.ConflictStrategy
	if strategy == "" {
		strategy = s.strategy
	}
	if strategy != "" && !strategy.Valid() {
		return models.SyncConfig{}, fmt.Errorf("%w: unknown conflict strategy %q", ErrInvalidCredentials, strategy)
	}

	if creds.ExpiresAt == nil {
		if exp, err := utils.TokenExpiry(creds.Token); err == nil {
			creds.ExpiresAt = &exp
		}
	}

	if creds.ServerURL != "" {
		if err := s.adapter.SetServerURL(creds.ServerURL); err != nil {
			return models.SyncConfig{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
	}

	wasEnabled := false
	cfg, err := s.config.Update(ctx, func(cfg *models.SyncConfig) {
		wasEnabled = cfg.Enabled
		cfg.Enabled = true
		cfg.UserID = creds.UserID
		cfg.Email = creds.Email
		cfg.Token = creds.Token
		cfg.TokenExpiresAt = creds.ExpiresAt
		if creds.DeviceName != "" {
			cfg.DeviceName = creds.DeviceName
		}
		if creds.ServerURL != "" {
			cfg.ServerURL = creds.ServerURL
		}
		if strategy != "" {
			cfg.ConflictStrategy = strategy
		}
	})
	if err != nil {
		return models.SyncConfig{}, err
	}

	s.adapter.SetToken(cfg.Token)
	s.unlock(cfg)

	if !wasEnabled {
		existing, err := s.tasksRepo.ListAll(ctx)
		if err != nil {
			return cfg, fmt.Errorf("list local tasks: %w", err)
		}
		queued, err := s.queue.PopulateFromExisting(ctx, existing)
		if err != nil {
			return cfg, err
		}
		s.logger.Info().
			Str("func", "SyncService.EnableSync").
			Str("user_id", cfg.UserID).
			Int("queued", queued).
			Msg("sync enabled, existing tasks queued")
		s.background.NotifyChange()
	}

	return cfg, nil
}

// DisableSync implements SyncController.
func (s *SyncService) DisableSync(ctx context.Context) error {
	if _, err := s.config.Update(ctx, func(cfg *models.SyncConfig) {
		cfg.Enabled = false
		resetRetryState(cfg)
	}); err != nil {
		return err
	}

	dropped := s.coordinator.CancelPending()
	if err := s.queue.Clear(ctx); err != nil {
		return err
	}

	s.logger.Info().
		Str("func", "SyncService.DisableSync").
		Int("dropped_requests", dropped).
		Msg("sync disabled, pending queue cleared")
	return nil
}

// ListenAuth enables sync for every credentials message until ch is closed
// or ctx is done. It replaces the global auth event bus of a browser client.
func (s *SyncService) ListenAuth(ctx context.Context, ch <-chan models.AuthCredentials) {
	for {
		select {
		case <-ctx.Done():
			return
		case creds, ok := <-ch:
			if !ok {
				return
			}
			if _, err := s.EnableSync(ctx, creds); err != nil {
				s.logger.Err(err).Str("func", "SyncService.ListenAuth").Msg("failed to enable sync from auth handover")
			}
		}
	}
}

// RequestSync implements SyncController.
func (s *SyncService) RequestSync(ctx context.Context, priority models.SyncPriority) models.SyncResult {
	return s.coordinator.RequestSync(ctx, priority)
}

// CancelPending implements SyncController.
func (s *SyncService) CancelPending() int {
	return s.coordinator.CancelPending()
}

// Status implements SyncController.
func (s *SyncService) Status(ctx context.Context) (models.SyncStatusReport, error) {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return models.SyncStatusReport{}, err
	}

	pending, err := s.queue.Count(ctx)
	if err != nil {
		return models.SyncStatusReport{}, err
	}

	return models.SyncStatusReport{
		Enabled:             cfg.Enabled,
		DeviceID:            cfg.DeviceID,
		DeviceName:          cfg.DeviceName,
		Running:             s.coordinator.IsRunning(),
		Offline:             s.background.Offline(),
		PendingOperations:   pending,
		LastSyncAt:          cfg.LastSyncAt,
		ConsecutiveFailures: cfg.ConsecutiveFailures,
		NextRetryAt:         cfg.NextRetryAt,
		LastFailureReason:   cfg.LastFailureReason,
		LastResult:          s.engine.LastResult(),
		Health:              s.health.LastReport(),
		QueuedPriorities:    s.coordinator.PendingPriorities(),
	}, nil
}

// Health implements SyncController.
func (s *SyncService) Health(ctx context.Context) models.HealthReport {
	return s.health.Check(ctx)
}

func (s *SyncService) applyTransport(cfg models.SyncConfig) error {
	if cfg.ServerURL != "" {
		if err := s.adapter.SetServerURL(cfg.ServerURL); err != nil {
			return fmt.Errorf("restore server url: %w", err)
		}
	}
	if cfg.Token != "" {
		s.adapter.SetToken(cfg.Token)
	}
	return nil
}

// unlock derives the encryption key for the signed-in user when a
// passphrase is configured and the encryptor supports it.
func (s *SyncService) unlock(cfg models.SyncConfig) {
	if s.passphrase == "" || cfg.UserID == "" || s.encryptor.IsInitialized() {
		return
	}
	u, ok := s.encryptor.(unlocker)
	if !ok {
		return
	}
	if err := u.Unlock(s.passphrase, crypto.DeriveSalt(cfg.UserID)); err != nil {
		s.logger.Err(err).Str("func", "SyncService.unlock").Msg("failed to unlock encryptor")
		return
	}
	s.logger.Info().Str("func", "SyncService.unlock").Msg("encryptor unlocked")
}
