// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/models"
)

const (
	DefaultSyncInterval   = 5 * time.Minute
	DefaultDebounceDelay  = 3 * time.Second
	DefaultMinAutoSyncGap = 15 * time.Second

	eventBufferSize = 64
)

type backgroundEvent int

const (
	eventChange backgroundEvent = iota
	eventVisible
	eventOnline
	eventOffline
)

func (e backgroundEvent) String() string {
	switch e {
	case eventChange:
		return "change"
	case eventVisible:
		return "visible"
	case eventOnline:
		return "online"
	case eventOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// BackgroundSyncSettings tune the BackgroundSyncManager. Zero values fall
// back to the package defaults.
type BackgroundSyncSettings struct {
	Interval       time.Duration
	DebounceDelay  time.Duration
	MinAutoSyncGap time.Duration
}

// BackgroundSyncManager turns ambient events into automatic syncs: a
// periodic tick, a debounced sync after local changes, the app becoming
// visible, and the network coming back. All of them go through the
// coordinator with auto priority and at most one per MinAutoSyncGap.
//
// A failed sync that is still retryable is re-triggered when its backoff
// elapses.
type BackgroundSyncManager struct {
	requester syncRequester
	config    *ConfigStore
	settings  BackgroundSyncSettings
	limiter   *rate.Limiter

	events  chan backgroundEvent
	offline atomic.Bool

	job job

	logger *logger.Logger
}

// NewBackgroundSyncManager creates an idle manager.
func NewBackgroundSyncManager(requester syncRequester, config *ConfigStore, settings BackgroundSyncSettings, logger *logger.Logger) *BackgroundSyncManager {
	if settings.Interval <= 0 {
		settings.Interval = DefaultSyncInterval
	}
	if settings.DebounceDelay <= 0 {
		settings.DebounceDelay = DefaultDebounceDelay
	}
	if settings.MinAutoSyncGap <= 0 {
		settings.MinAutoSyncGap = DefaultMinAutoSyncGap
	}

	return &BackgroundSyncManager{
		requester: requester,
		config:    config,
		settings:  settings,
		limiter:   rate.NewLimiter(rate.Every(settings.MinAutoSyncGap), 1),
		events:    make(chan backgroundEvent, eventBufferSize),
		logger:    logger,
	}
}

// NotifyChange schedules a debounced sync after a local mutation.
func (m *BackgroundSyncManager) NotifyChange() { m.notify(eventChange) }

// NotifyVisible requests a sync because the user came back to the app.
func (m *BackgroundSyncManager) NotifyVisible() { m.notify(eventVisible) }

// NotifyOnline requests a sync because connectivity was restored.
func (m *BackgroundSyncManager) NotifyOnline() { m.notify(eventOnline) }

// NotifyOffline suspends automatic syncs until NotifyOnline.
func (m *BackgroundSyncManager) NotifyOffline() { m.notify(eventOffline) }

// Offline reports whether the manager considers the network down.
func (m *BackgroundSyncManager) Offline() bool {
	return m.offline.Load()
}

func (m *BackgroundSyncManager) notify(e backgroundEvent) {
	select {
	case m.events <- e:
	default:
		m.logger.Debug().Str("func", "BackgroundSyncManager.notify").Stringer("event", e).Msg("event buffer full, event dropped")
	}
}

// Start implements workers.Worker. It triggers one sync right away.
func (m *BackgroundSyncManager) Start(ctx context.Context) {
	m.job.start(ctx, m.loop)
}

// Stop implements workers.Worker.
func (m *BackgroundSyncManager) Stop() {
	m.job.stop()
}

func (m *BackgroundSyncManager) loop(ctx context.Context) {
	ticker := time.NewTicker(m.settings.Interval)
	defer ticker.Stop()

	var (
		debounceC <-chan time.Time
		retryC    <-chan time.Time
		deferredC <-chan time.Time
	)

	trigger := func(reason string) {
		if m.offline.Load() {
			return
		}

		now := time.Now()
		r := m.limiter.ReserveN(now, 1)
		if delay := r.DelayFrom(now); delay > 0 {
			r.CancelAt(now)
			if deferredC == nil {
				deferredC = time.After(delay)
			}
			m.logger.Debug().Str("func", "BackgroundSyncManager.trigger").Str("reason", reason).Dur("delay", delay).Msg("automatic sync deferred")
			return
		}

		if next, ok := m.run(ctx, reason); ok {
			retryC = time.After(time.Until(next))
		}
	}

	trigger("startup")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			trigger("interval")
		case <-debounceC:
			debounceC = nil
			trigger("change")
		case <-retryC:
			retryC = nil
			trigger("retry")
		case <-deferredC:
			deferredC = nil
			trigger("deferred")
		case e := <-m.events:
			switch e {
			case eventChange:
				debounceC = time.After(m.settings.DebounceDelay)
			case eventVisible:
				trigger(e.String())
			case eventOnline:
				m.offline.Store(false)
				trigger(e.String())
			case eventOffline:
				m.offline.Store(true)
			}
		}
	}
}

// run requests an auto sync. It returns the backoff deadline when the sync
// failed and is still retryable.
func (m *BackgroundSyncManager) run(ctx context.Context, reason string) (time.Time, bool) {
	cfg, err := m.config.Load(ctx)
	if err != nil {
		m.logger.Err(err).Str("func", "BackgroundSyncManager.run").Msg("failed to load sync config")
		return time.Time{}, false
	}
	if !cfg.Enabled {
		return time.Time{}, false
	}

	m.logger.Debug().Str("func", "BackgroundSyncManager.run").Str("reason", reason).Msg("requesting automatic sync")

	result := m.requester.RequestSync(ctx, models.SyncPriorityAuto)
	if result.Status != models.SyncStatusError || !result.WillRetry {
		return time.Time{}, false
	}

	cfg, err = m.config.Load(ctx)
	if err != nil || cfg.NextRetryAt == nil {
		return time.Time{}, false
	}
	return *cfg.NextRetryAt, true
}
