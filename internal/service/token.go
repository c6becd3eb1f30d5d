// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/metrics"
	"github.com/MKhiriev/go-task-sync/internal/utils"
	"github.com/MKhiriev/go-task-sync/models"
)

// RefreshThreshold is how close to expiry a token gets refreshed proactively.
const RefreshThreshold = 5 * time.Minute

const (
	refreshProactive = "proactive"
	refreshReactive  = "reactive"
)

// TokenManager tracks the bearer token lifecycle. Concurrent refreshes, for
// example from the engine and the health monitor, share one request.
type TokenManager struct {
	config  *ConfigStore
	adapter adapter.ServerAdapter
	group   singleflight.Group
	now     func() time.Time

	logger *logger.Logger
}

// NewTokenManager creates a token manager.
func NewTokenManager(config *ConfigStore, serverAdapter adapter.ServerAdapter, logger *logger.Logger) *TokenManager {
	return &TokenManager{
		config:  config,
		adapter: serverAdapter,
		now:     time.Now,
		logger:  logger,
	}
}

// NeedsRefresh reports whether the token expires within RefreshThreshold.
// The expiry comes from the config, falling back to the token's exp claim.
// A token with unknown expiry is never refreshed proactively.
func (m *TokenManager) NeedsRefresh(cfg models.SyncConfig) bool {
	expiry, ok := tokenExpiry(cfg)
	if !ok {
		return false
	}
	return expiry.Sub(m.now()) <= RefreshThreshold
}

// EnsureValidToken refreshes the token if it is about to expire. A failed
// refresh is reported as ErrTokenRefreshFailed while the current token is
// still valid, which callers may ignore, and as ErrReauthRequired once it
// has expired.
func (m *TokenManager) EnsureValidToken(ctx context.Context) error {
	cfg, err := m.config.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return fmt.Errorf("%w: no token", ErrReauthRequired)
	}

	if m.adapter.Token() != cfg.Token {
		m.adapter.SetToken(cfg.Token)
	}

	if !m.NeedsRefresh(cfg) {
		return nil
	}

	err = m.refresh(ctx, refreshProactive)
	if err == nil {
		return nil
	}

	if expiry, ok := tokenExpiry(cfg); ok && m.now().Before(expiry) {
		return fmt.Errorf("%w: %w", ErrTokenRefreshFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrReauthRequired, err)
}

// HandleUnauthorized refreshes the token after the server answered 401 or
// 403. On failure the user has to sign in again.
func (m *TokenManager) HandleUnauthorized(ctx context.Context) error {
	if err := m.refresh(ctx, refreshReactive); err != nil {
		return fmt.Errorf("%w: %w", ErrReauthRequired, err)
	}
	return nil
}

func (m *TokenManager) refresh(ctx context.Context, trigger string) error {
	_, err, shared := m.group.Do("refresh", func() (any, error) {
		err := m.doRefresh(ctx)
		metrics.RecordTokenRefresh(trigger, err)
		return nil, err
	})

	if err != nil {
		m.logger.Warn().
			Err(err).
			Str("func", "TokenManager.refresh").
			Str("trigger", trigger).
			Msg("token refresh failed")
		return err
	}

	m.logger.Info().
		Str("func", "TokenManager.refresh").
		Str("trigger", trigger).
		Bool("shared", shared).
		Msg("token refreshed")

	return nil
}

func (m *TokenManager) doRefresh(ctx context.Context) error {
	resp, err := m.adapter.RefreshToken(ctx)
	if err != nil {
		return err
	}

	expiresAt := resp.ExpiresAt
	if expiresAt.IsZero() {
		if exp, jerr := utils.TokenExpiry(resp.Token); jerr == nil {
			expiresAt = exp
		}
	}

	_, err = m.config.Update(ctx, func(cfg *models.SyncConfig) {
		cfg.Token = resp.Token
		cfg.TokenExpiresAt = nil
		if !expiresAt.IsZero() {
			cfg.TokenExpiresAt = timePtr(expiresAt.UTC())
		}
	})
	if err != nil {
		return err
	}

	m.adapter.SetToken(resp.Token)
	return nil
}

// tokenExpiry returns the known expiry of the configured token.
func tokenExpiry(cfg models.SyncConfig) (time.Time, bool) {
	if cfg.TokenExpiresAt != nil {
		return *cfg.TokenExpiresAt, true
	}
	if cfg.Token == "" {
		return time.Time{}, false
	}
	exp, err := utils.TokenExpiry(cfg.Token)
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}
