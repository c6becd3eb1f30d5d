// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-task-sync/models"
)

type recordingRequester struct {
	calls   atomic.Int32
	nonAuto atomic.Bool
	respond func(n int) models.SyncResult
}

func (r *recordingRequester) RequestSync(_ context.Context, priority models.SyncPriority) models.SyncResult {
	n := int(r.calls.Add(1))
	if priority != models.SyncPriorityAuto {
		r.nonAuto.Store(true)
	}
	if r.respond != nil {
		return r.respond(n)
	}
	return models.SyncResult{Status: models.SyncStatusSuccess, Priority: priority}
}

func (r *recordingRequester) count() int { return int(r.calls.Load()) }

func newBackgroundFixture(t *testing.T, settings BackgroundSyncSettings, enabled bool) (*harness, *recordingRequester, *BackgroundSyncManager) {
	t.Helper()

	h := newHarness(t)
	if enabled {
		h.enable(t, nil)
	}
	requester := &recordingRequester{}
	m := NewBackgroundSyncManager(requester, h.config, settings, h.log)
	t.Cleanup(m.Stop)
	return h, requester, m
}

func fastSettings() BackgroundSyncSettings {
	return BackgroundSyncSettings{
		Interval:       time.Hour,
		DebounceDelay:  20 * time.Millisecond,
		MinAutoSyncGap: time.Millisecond,
	}
}

func TestBackgroundSyncManager_Defaults(t *testing.T) {
	_, _, m := newBackgroundFixture(t, BackgroundSyncSettings{}, false)

	assert.Equal(t, DefaultSyncInterval, m.settings.Interval)
	assert.Equal(t, DefaultDebounceDelay, m.settings.DebounceDelay)
	assert.Equal(t, DefaultMinAutoSyncGap, m.settings.MinAutoSyncGap)
}

func TestBackgroundSyncManager_StartupSync(t *testing.T) {
	_, requester, m := newBackgroundFixture(t, fastSettings(), true)

	m.Start(context.Background())
	require.Eventually(t, func() bool { return requester.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, requester.nonAuto.Load(), "background syncs use auto priority")
}

func TestBackgroundSyncManager_DisabledSyncIsNotRequested(t *testing.T) {
	_, requester, m := newBackgroundFixture(t, fastSettings(), false)

	m.Start(context.Background())
	m.NotifyVisible()
	m.NotifyChange()

	assert.Never(t, func() bool { return requester.count() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestBackgroundSyncManager_DebouncesChanges(t *testing.T) {
	_, requester, m := newBackgroundFixture(t, fastSettings(), true)

	m.Start(context.Background())
	require.Eventually(t, func() bool { return requester.count() == 1 }, time.Second, 5*time.Millisecond)

	for range 5 {
		m.NotifyChange()
	}

	require.Eventually(t, func() bool { return requester.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return requester.count() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestBackgroundSyncManager_MinimumGapDefersTriggers(t *testing.T) {
	settings := fastSettings()
	settings.MinAutoSyncGap = 300 * time.Millisecond
	_, requester, m := newBackgroundFixture(t, settings, true)

	m.Start(context.Background())
	require.Eventually(t, func() bool { return requester.count() == 1 }, time.Second, 5*time.Millisecond)

	m.NotifyVisible()
	m.NotifyVisible()

	assert.Never(t, func() bool { return requester.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
	require.Eventually(t, func() bool { return requester.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestBackgroundSyncManager_Offline(t *testing.T) {
	_, requester, m := newBackgroundFixture(t, fastSettings(), true)

	m.Start(context.Background())
	require.Eventually(t, func() bool { return requester.count() == 1 }, time.Second, 5*time.Millisecond)

	m.NotifyOffline()
	require.Eventually(t, m.Offline, time.Second, 5*time.Millisecond)

	m.NotifyVisible()
	m.NotifyChange()
	assert.Never(t, func() bool { return requester.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	m.NotifyOnline()
	require.Eventually(t, func() bool { return requester.count() >= 2 }, time.Second, 5*time.Millisecond)
	assert.False(t, m.Offline())
}

func TestBackgroundSyncManager_RetriesAfterBackoff(t *testing.T) {
	h, requester, m := newBackgroundFixture(t, fastSettings(), true)

	requester.respond = func(n int) models.SyncResult {
		if n > 1 {
			return models.SyncResult{Status: models.SyncStatusSuccess, Priority: models.SyncPriorityAuto}
		}
		_, err := h.config.Update(context.Background(), func(cfg *models.SyncConfig) {
			cfg.ConsecutiveFailures = 1
			cfg.NextRetryAt = timePtr(time.Now().Add(50 * time.Millisecond))
		})
		assert.NoError(t, err)
		return models.SyncResult{Status: models.SyncStatusError, Priority: models.SyncPriorityAuto, WillRetry: true}
	}

	m.Start(context.Background())
	require.Eventually(t, func() bool { return requester.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestBackgroundSyncManager_NoRetryWhenExhausted(t *testing.T) {
	_, requester, m := newBackgroundFixture(t, fastSettings(), true)
	requester.respond = func(int) models.SyncResult {
		return models.SyncResult{Status: models.SyncStatusError, Priority: models.SyncPriorityAuto, WillRetry: false}
	}

	m.Start(context.Background())
	require.Eventually(t, func() bool { return requester.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return requester.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}
