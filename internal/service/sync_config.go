// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

const defaultDeviceName = "unnamed device"

// ConfigStore is the single accessor of the persisted SyncConfig record.
// Every read goes through Load, which upgrades older records once; every
// read-modify-write goes through Update so that concurrent phases never
// overwrite each other's fields.
type ConfigStore struct {
	repo       store.SyncConfigRepository
	ids        idGenerator
	deviceName string

	mu sync.Mutex

	logger *logger.Logger
}

// NewConfigStore wraps repo. deviceName is used for records that do not have
// one yet.
func NewConfigStore(repo store.SyncConfigRepository, ids idGenerator, deviceName string, logger *logger.Logger) *ConfigStore {
	return &ConfigStore{
		repo:       repo,
		ids:        ids,
		deviceName: deviceName,
		logger:     logger,
	}
}

// Load returns the current config, creating and persisting a default record
// on first use.
func (c *ConfigStore) Load(ctx context.Context) (models.SyncConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.load(ctx)
}

// Update applies fn to the current config and persists the result.
func (c *ConfigStore) Update(ctx context.Context, fn func(cfg *models.SyncConfig)) (models.SyncConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, err := c.load(ctx)
	if err != nil {
		return models.SyncConfig{}, err
	}

	fn(&cfg)

	if err = c.repo.Save(ctx, cfg); err != nil {
		return models.SyncConfig{}, fmt.Errorf("save sync config: %w", err)
	}
	return cfg, nil
}

func (c *ConfigStore) load(ctx context.Context) (models.SyncConfig, error) {
	cfg, err := c.repo.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrSyncConfigNotFound) {
		return models.SyncConfig{}, fmt.Errorf("load sync config: %w", err)
	}

	migrated, changed := migrateSyncConfig(cfg, c.ids, c.deviceName)
	if !changed {
		return migrated, nil
	}

	if err = c.repo.Save(ctx, migrated); err != nil {
		return models.SyncConfig{}, fmt.Errorf("save migrated sync config: %w", err)
	}

	c.logger.Info().
		Str("func", "ConfigStore.load").
		Int("from_version", cfg.SchemaVersion).
		Int("to_version", migrated.SchemaVersion).
		Msg("sync config upgraded")

	return migrated, nil
}

// migrateSyncConfig brings a persisted record up to SyncConfigSchemaVersion.
// A zero value (nothing persisted yet) is treated as version 0.
//
//	v1: vector clock and conflict strategy are always set
//	v2: device identity is always set
//	v3: retry state is self-consistent
func migrateSyncConfig(cfg models.SyncConfig, ids idGenerator, deviceName string) (models.SyncConfig, bool) {
	if cfg.SchemaVersion >= models.SyncConfigSchemaVersion {
		return cfg, false
	}

	out := cfg.Clone()

	if out.SchemaVersion < 1 {
		if out.VectorClock == nil {
			out.VectorClock = models.VectorClock{}
		}
		if out.ConflictStrategy == "" {
			out.ConflictStrategy = models.ConflictStrategyLastWriteWins
		}
	}

	if out.SchemaVersion < 2 {
		if out.DeviceID == "" {
			out.DeviceID = ids.Generate()
		}
		if out.DeviceName == "" {
			out.DeviceName = deviceName
		}
		if out.DeviceName == "" {
			out.DeviceName = defaultDeviceName
		}
	}

	if out.SchemaVersion < 3 {
		if out.ConsecutiveFailures < 0 {
			out.ConsecutiveFailures = 0
		}
		if out.ConsecutiveFailures == 0 {
			out.LastFailureAt = nil
			out.LastFailureReason = ""
			out.NextRetryAt = nil
		}
	}

	out.SchemaVersion = models.SyncConfigSchemaVersion
	return out, true
}

func timePtr(t time.Time) *time.Time {
	return &t
}
