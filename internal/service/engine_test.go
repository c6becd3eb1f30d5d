// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/app"
	"github.com/MKhiriev/go-task-sync/models"
)

func createTask(t *testing.T, d *testDevice, id, title string) models.Task {
	t.Helper()
	task, err := d.service.Tasks().Create(context.Background(), models.Task{ID: id, Title: title})
	require.NoError(t, err)
	return task
}

func TestSyncEngine_FirstSyncUploadsExistingTasks(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"task-1", "task-2", "task-3"} {
		require.NoError(t, device.storages.Tasks.Put(ctx, newTask(id, "offline "+id, now, nil)))
	}

	device.enable(t)

	ops := device.pending(t)
	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, models.OperationCreate, op.Kind)
	}

	result := device.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
	assert.Equal(t, models.SyncPriorityUser, result.Priority)
	assert.Equal(t, 3, result.Pushed)
	assert.Equal(t, 0, result.Pulled)

	assert.Empty(t, device.pending(t))

	cfg := device.config(t)
	assert.NotNil(t, cfg.LastSyncAt)
	assert.Equal(t, 0, cfg.ConsecutiveFailures)
	assert.Nil(t, cfg.NextRetryAt)

	for _, id := range []string{"task-1", "task-2", "task-3"} {
		_, ok := server.stored(id)
		assert.True(t, ok, id)
	}

	last := device.service.engine.LastResult()
	require.NotNil(t, last)
	assert.Equal(t, models.SyncStatusSuccess, last.Status)
	assert.Equal(t, StateIdle, device.service.engine.State())
	assert.False(t, device.service.engine.IsRunning())
}

func TestSyncEngine_AppendsHistory(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	device.enable(t)
	createTask(t, device, "task-1", "write report")

	device.sync(t)

	recent, err := device.storages.History.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.SyncStatusSuccess, recent[0].Status)
	assert.Equal(t, 1, recent[0].Pushed)
}

func TestSyncEngine_Preconditions(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, d *testDevice)
		priority     models.SyncPriority
		wantMessage  string
		wantCategory models.ErrorCategory
	}{
		{
			name:         "sync disabled",
			setup:        func(*testing.T, *testDevice) {},
			priority:     models.SyncPriorityUser,
			wantMessage:  app.MsgSyncDisabled,
			wantCategory: models.ErrorCategoryPermanent,
		},
		{
			name: "auto sync inside backoff window",
			setup: func(t *testing.T, d *testDevice) {
				d.enable(t)
				_, err := d.service.config.Update(context.Background(), func(cfg *models.SyncConfig) {
					cfg.ConsecutiveFailures = 2
					cfg.NextRetryAt = timePtr(time.Now().Add(time.Hour))
				})
				require.NoError(t, err)
			},
			priority:     models.SyncPriorityAuto,
			wantMessage:  app.MsgSyncBackoff,
			wantCategory: models.ErrorCategoryTransient,
		},
		{
			name: "encryptor locked",
			setup: func(t *testing.T, d *testDevice) {
				d.enable(t)
				d.enc.locked.Store(true)
			},
			priority:     models.SyncPriorityUser,
			wantMessage:  app.MsgEncryptionLocked,
			wantCategory: models.ErrorCategoryPermanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFakeServer()
			device := newTestDevice(t, server, "laptop")
			tt.setup(t, device)

			before := device.config(t)
			result := device.service.engine.Sync(context.Background(), tt.priority)

			assert.Equal(t, models.SyncStatusError, result.Status)
			assert.Equal(t, tt.wantMessage, result.Message)
			assert.Equal(t, tt.wantCategory, result.ErrorCategory)

			pushes, pulls, _ := server.counts()
			assert.Zero(t, pushes)
			assert.Zero(t, pulls)

			after := device.config(t)
			assert.Equal(t, before.ConsecutiveFailures, after.ConsecutiveFailures, "backoff counters untouched")
		})
	}
}

func TestSyncEngine_UserSyncBypassesBackoff(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	device.enable(t)

	_, err := device.service.config.Update(context.Background(), func(cfg *models.SyncConfig) {
		cfg.ConsecutiveFailures = 3
		cfg.NextRetryAt = timePtr(time.Now().Add(time.Hour))
	})
	require.NoError(t, err)

	result := device.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)

	cfg := device.config(t)
	assert.Equal(t, 0, cfg.ConsecutiveFailures)
	assert.Nil(t, cfg.NextRetryAt)
}

func TestSyncEngine_AlreadyRunning(t *testing.T) {
	device := newTestDevice(t, newFakeServer(), "laptop")
	device.enable(t)

	engine := device.service.engine
	engine.running.Store(true)

	result := engine.Sync(context.Background(), models.SyncPriorityAuto)
	assert.Equal(t, models.SyncStatusAlreadyRunning, result.Status)
	assert.Equal(t, app.MsgSyncAlreadyRunning, result.Message)
	assert.Nil(t, engine.LastResult(), "already_running is not recorded")
}

func TestSyncEngine_TransientFailure(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	device.enable(t)
	createTask(t, device, "task-1", "write report")

	server.failPush(errors.New("connection reset by peer"))

	result := device.sync(t)
	assert.Equal(t, models.SyncStatusError, result.Status)
	assert.Equal(t, models.ErrorCategoryTransient, result.ErrorCategory)
	assert.True(t, result.WillRetry)
	assert.Equal(t, app.MsgSyncWillRetry, result.Message)

	cfg := device.config(t)
	assert.Equal(t, 1, cfg.ConsecutiveFailures)
	require.NotNil(t, cfg.NextRetryAt)
	require.NotNil(t, cfg.LastFailureAt)
	assert.Equal(t, 5*time.Second, cfg.NextRetryAt.Sub(*cfg.LastFailureAt))
	assert.Contains(t, cfg.LastFailureReason, "connection reset by peer")
	assert.Nil(t, cfg.LastSyncAt)
	assert.Len(t, device.pending(t), 1, "failed push keeps the queue")

	result = device.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
	cfg = device.config(t)
	assert.Equal(t, 0, cfg.ConsecutiveFailures)
	assert.Empty(t, cfg.LastFailureReason)
	assert.Empty(t, device.pending(t))
}

func TestSyncEngine_RetriesExhausted(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	device.enable(t)
	createTask(t, device, "task-1", "write report")

	_, err := device.service.config.Update(context.Background(), func(cfg *models.SyncConfig) {
		cfg.ConsecutiveFailures = MaxRetries - 1
	})
	require.NoError(t, err)

	server.failPush(errors.New("service unavailable"))

	result := device.sync(t)
	assert.Equal(t, models.ErrorCategoryTransient, result.ErrorCategory)
	assert.False(t, result.WillRetry)
	assert.Equal(t, app.MsgCheckConnection, result.Message)
	assert.Equal(t, MaxRetries, device.config(t).ConsecutiveFailures)
}

func TestSyncEngine_PermanentFailureLeavesBackoffAlone(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	device.enable(t)
	createTask(t, device, "task-1", "write report")

	server.failPush(adapter.ErrBadRequest)

	result := device.sync(t)
	assert.Equal(t, models.SyncStatusError, result.Status)
	assert.Equal(t, models.ErrorCategoryPermanent, result.ErrorCategory)
	assert.False(t, result.WillRetry)
	assert.Equal(t, result.Error, result.Message)

	cfg := device.config(t)
	assert.Equal(t, 0, cfg.ConsecutiveFailures)
	assert.Nil(t, cfg.NextRetryAt)
}

func TestSyncEngine_PullFailureDoesNotCommitClock(t *testing.T) {
	server := newFakeServer()
	device := newTestDevice(t, server, "laptop")
	device.enable(t)
	createTask(t, device, "task-1", "write report")

	server.failPull(errors.New("i/o timeout"))

	result := device.sync(t)
	assert.Equal(t, models.SyncStatusError, result.Status)
	assert.Equal(t, models.ErrorCategoryTransient, result.ErrorCategory)

	cfg := device.config(t)
	assert.Nil(t, cfg.LastSyncAt)
	assert.Empty(t, cfg.VectorClock)
	assert.Empty(t, device.pending(t), "accepted operations are not pushed twice")

	_, ok := server.stored("task-1")
	assert.True(t, ok)
}

func TestSyncEngine_Unauthorized(t *testing.T) {
	t.Run("refreshes once and retries", func(t *testing.T) {
		server := newFakeServer()
		device := newTestDevice(t, server, "laptop")
		device.enable(t)
		createTask(t, device, "task-1", "write report")

		server.failPush(adapter.ErrUnauthorized)

		result := device.sync(t)
		require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
		assert.Equal(t, 1, result.Pushed)

		pushes, _, refreshes := server.counts()
		assert.Equal(t, 2, pushes)
		assert.Equal(t, 1, refreshes)
		assert.Equal(t, "refreshed-1", device.client.Token())
		assert.Equal(t, "refreshed-1", device.config(t).Token)
	})

	t.Run("second rejection asks for a manual retry", func(t *testing.T) {
		server := newFakeServer()
		device := newTestDevice(t, server, "laptop")
		device.enable(t)
		createTask(t, device, "task-1", "write report")

		server.failPush(adapter.ErrUnauthorized, adapter.ErrForbidden)

		result := device.sync(t)
		assert.Equal(t, models.SyncStatusError, result.Status)
		assert.Equal(t, models.ErrorCategoryAuth, result.ErrorCategory)
		assert.Equal(t, app.MsgSessionRefreshed, result.Message)

		_, _, refreshes := server.counts()
		assert.Equal(t, 1, refreshes)
		assert.Equal(t, 0, device.config(t).ConsecutiveFailures)
	})

	t.Run("failed refresh requires sign in", func(t *testing.T) {
		server := newFakeServer()
		server.refreshErr = adapter.ErrUnauthorized
		device := newTestDevice(t, server, "laptop")
		device.enable(t)
		createTask(t, device, "task-1", "write report")

		server.failPush(adapter.ErrUnauthorized)

		result := device.sync(t)
		assert.Equal(t, models.ErrorCategoryAuth, result.ErrorCategory)
		assert.Equal(t, app.MsgReauthRequired, result.Message)
		assert.Len(t, device.pending(t), 1)
	})
}

func TestSyncEngine_TwoDevicesConverge(t *testing.T) {
	server := newFakeServer()
	laptop := newTestDevice(t, server, "laptop")
	phone := newTestDevice(t, server, "phone")
	laptop.enable(t)
	phone.enable(t)

	a := laptop.config(t).DeviceID
	b := phone.config(t).DeviceID
	t0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	laptop.setNow(t0)
	createTask(t, laptop, "task-1", "draft")
	require.Equal(t, models.SyncStatusSuccess, laptop.sync(t).Status)

	result := phone.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
	assert.Equal(t, 1, result.Pulled)
	assert.Equal(t, models.VectorClock{a: 1}, phone.task(t, "task-1").VectorClock)

	// Both devices edit offline; the phone edits last.
	laptop.setNow(t0.Add(time.Minute))
	onLaptop := laptop.task(t, "task-1")
	onLaptop.Title = "from laptop"
	_, err := laptop.service.Tasks().Update(context.Background(), onLaptop)
	require.NoError(t, err)

	phone.setNow(t0.Add(2 * time.Minute))
	onPhone := phone.task(t, "task-1")
	onPhone.Title = "from phone"
	_, err = phone.service.Tasks().Update(context.Background(), onPhone)
	require.NoError(t, err)

	require.Equal(t, models.SyncStatusSuccess, laptop.sync(t).Status)

	// The server reports a conflict for the phone's push; the pulled laptop
	// version is older, so the phone keeps its copy and queues it again.
	result = phone.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
	assert.Equal(t, 0, result.Pushed)
	assert.Equal(t, 0, result.Pulled)
	require.Len(t, phone.pending(t), 1)
	assert.Equal(t, "from phone", phone.task(t, "task-1").Title)

	result = phone.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
	assert.Equal(t, 1, result.Pushed)

	result = laptop.sync(t)
	require.Equal(t, models.SyncStatusSuccess, result.Status, result.Error)
	assert.Equal(t, 1, result.Pulled)

	want := models.VectorClock{a: 2, b: 1}
	for _, d := range []*testDevice{laptop, phone} {
		task := d.task(t, "task-1")
		assert.Equal(t, "from phone", task.Title, d.name)
		assert.Equal(t, want, task.VectorClock, d.name)
		assert.Empty(t, d.pending(t), d.name)
	}
}

func TestSyncEngine_ManualStrategyReportsConflict(t *testing.T) {
	server := newFakeServer()
	laptop := newTestDevice(t, server, "laptop")
	phone := newTestDevice(t, server, "phone")
	laptop.enable(t)

	cfg, err := phone.service.EnableSync(context.Background(), models.AuthCredentials{
		Token:            "token-phone",
		UserID:           "user-1",
		ConflictStrategy: models.ConflictStrategyManual,
	})
	require.NoError(t, err)
	require.Equal(t, models.ConflictStrategyManual, cfg.ConflictStrategy)

	t0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	laptop.setNow(t0)
	createTask(t, laptop, "task-1", "draft")
	require.Equal(t, models.SyncStatusSuccess, laptop.sync(t).Status)
	require.Equal(t, models.SyncStatusSuccess, phone.sync(t).Status)

	laptop.setNow(t0.Add(time.Minute))
	onLaptop := laptop.task(t, "task-1")
	onLaptop.Title = "from laptop"
	_, err = laptop.service.Tasks().Update(context.Background(), onLaptop)
	require.NoError(t, err)
	require.Equal(t, models.SyncStatusSuccess, laptop.sync(t).Status)

	phone.setNow(t0.Add(2 * time.Minute))
	onPhone := phone.task(t, "task-1")
	onPhone.Title = "from phone"
	_, err = phone.service.Tasks().Update(context.Background(), onPhone)
	require.NoError(t, err)

	// The server holds the phone's operation back, so it is still pending
	// when the laptop's concurrent version arrives.
	server.mu.Lock()
	server.reject["task-1"] = models.RejectVersionMismatch
	server.mu.Unlock()

	result := phone.sync(t)
	assert.Equal(t, models.SyncStatusConflict, result.Status)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "from phone", result.Conflicts[0].Local.Title)
	assert.Equal(t, "from laptop", result.Conflicts[0].Remote.Title)
	assert.Equal(t, "from phone", phone.task(t, "task-1").Title)
	assert.NotNil(t, phone.config(t).LastSyncAt)
}
