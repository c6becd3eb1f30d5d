package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

func TestConfigStore_Load_CreatesDefaults(t *testing.T) {
	h := newHarness(t)

	cfg := h.loadConfig(t)
	assert.Equal(t, models.SyncConfigSchemaVersion, cfg.SchemaVersion)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "id-1", cfg.DeviceID)
	assert.Equal(t, "test device", cfg.DeviceName)
	assert.Equal(t, models.ConflictStrategyLastWriteWins, cfg.ConflictStrategy)
	assert.NotNil(t, cfg.VectorClock)

	// the record is persisted, so the device id is stable
	again := h.loadConfig(t)
	assert.Equal(t, cfg.DeviceID, again.DeviceID)

	persisted, err := h.storages.Config.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.DeviceID, persisted.DeviceID)
}

func TestMigrateSyncConfig(t *testing.T) {
	failedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		in          models.SyncConfig
		deviceName  string
		wantChanged bool
		check       func(t *testing.T, out models.SyncConfig)
	}{
		{
			name:        "current version is untouched",
			in:          models.SyncConfig{SchemaVersion: models.SyncConfigSchemaVersion, DeviceID: "dev"},
			wantChanged: false,
			check: func(t *testing.T, out models.SyncConfig) {
				assert.Equal(t, "dev", out.DeviceID)
				assert.Nil(t, out.VectorClock)
			},
		},
		{
			name:        "v0 gets every default",
			in:          models.SyncConfig{},
			deviceName:  "laptop",
			wantChanged: true,
			check: func(t *testing.T, out models.SyncConfig) {
				assert.Equal(t, "mig-1", out.DeviceID)
				assert.Equal(t, "laptop", out.DeviceName)
				assert.Equal(t, models.ConflictStrategyLastWriteWins, out.ConflictStrategy)
				assert.Equal(t, models.VectorClock{}, out.VectorClock)
			},
		},
		{
			name:        "v1 keeps strategy and gets identity",
			in:          models.SyncConfig{SchemaVersion: 1, ConflictStrategy: models.ConflictStrategyManual, VectorClock: models.VectorClock{"x": 3}},
			wantChanged: true,
			check: func(t *testing.T, out models.SyncConfig) {
				assert.Equal(t, models.ConflictStrategyManual, out.ConflictStrategy)
				assert.Equal(t, models.VectorClock{"x": 3}, out.VectorClock)
				assert.Equal(t, "mig-1", out.DeviceID)
				assert.Equal(t, defaultDeviceName, out.DeviceName)
			},
		},
		{
			name: "v2 clears stale retry state",
			in: models.SyncConfig{
				SchemaVersion:     2,
				DeviceID:          "dev",
				DeviceName:        "phone",
				LastFailureAt:     &failedAt,
				LastFailureReason: "old",
				NextRetryAt:       &failedAt,
			},
			wantChanged: true,
			check: func(t *testing.T, out models.SyncConfig) {
				assert.Equal(t, "dev", out.DeviceID)
				assert.Equal(t, "phone", out.DeviceName)
				assert.Nil(t, out.LastFailureAt)
				assert.Nil(t, out.NextRetryAt)
				assert.Empty(t, out.LastFailureReason)
			},
		},
		{
			name:        "v2 keeps real retry state",
			in:          models.SyncConfig{SchemaVersion: 2, DeviceID: "dev", ConsecutiveFailures: 2, NextRetryAt: &failedAt},
			wantChanged: true,
			check: func(t *testing.T, out models.SyncConfig) {
				assert.Equal(t, 2, out.ConsecutiveFailures)
				require.NotNil(t, out.NextRetryAt)
				assert.Equal(t, failedAt, *out.NextRetryAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed := migrateSyncConfig(tt.in, newSeqIDs("mig"), tt.deviceName)
			assert.Equal(t, tt.wantChanged, changed)
			if changed {
				assert.Equal(t, models.SyncConfigSchemaVersion, out.SchemaVersion)
			}
			tt.check(t, out)
		})
	}
}

type failingConfigRepo struct{ err error }

func (r failingConfigRepo) Load(context.Context) (models.SyncConfig, error) {
	return models.SyncConfig{}, r.err
}

func (r failingConfigRepo) Save(context.Context, models.SyncConfig) error { return r.err }

func TestConfigStore_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("disk full")
	cs := NewConfigStore(failingConfigRepo{err: boom}, newSeqIDs("id"), "", logger.Nop())

	_, err := cs.Load(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = cs.Update(context.Background(), func(*models.SyncConfig) {})
	require.ErrorIs(t, err, boom)
}

func TestConfigStore_UpdateIsSerialized(t *testing.T) {
	storages := store.NewMemoryClientStorages()
	cs := NewConfigStore(storages.Config, newSeqIDs("id"), "", logger.Nop())
	ctx := context.Background()

	const workers = 20
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = cs.Update(ctx, func(cfg *models.SyncConfig) { cfg.ConsecutiveFailures++ })
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	cfg, err := cs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, cfg.ConsecutiveFailures)
}
