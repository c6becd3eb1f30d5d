// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Defaults applied to zero-valued fields of the client view.
const (
	DefaultRequestTimeout      = 30 * time.Second
	DefaultPullPageSize        = 100
	DefaultSyncInterval        = 5 * time.Minute
	DefaultDebounceDelay       = 3 * time.Second
	DefaultMinAutoSyncGap      = 15 * time.Second
	DefaultHealthCheckInterval = 5 * time.Minute
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	HashKey              string
	DeviceName           string
	EncryptionPassphrase string
	LogLevel             string
	LogFile              string
	ConflictStrategy     string
	SyncOnce             bool
}

// ClientAdapter holds network settings used by the transport layer.
type ClientAdapter struct {
	// HTTPAddress is the sync server base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// PullPageSize is the page limit of pull requests.
	PullPageSize int
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the sqlite connection string.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains background trigger settings.
type ClientWorkers struct {
	SyncInterval        time.Duration
	DebounceDelay       time.Duration
	MinAutoSyncGap      time.Duration
	HealthCheckInterval time.Duration
}

// ClientServer contains the local control API settings.
type ClientServer struct {
	HTTPAddress    string
	RequestTimeout time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Server  ClientServer
}

// GetClientConfig builds and validates the client view of the merged
// structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	clientCfg := &ClientConfig{
		App: ClientApp{
			HashKey:              cfg.App.HashKey,
			DeviceName:           cfg.App.DeviceName,
			EncryptionPassphrase: cfg.App.EncryptionPassphrase,
			LogLevel:             cfg.App.LogLevel,
			LogFile:              cfg.App.LogFile,
			ConflictStrategy:     cfg.App.ConflictStrategy,
			SyncOnce:             cfg.App.SyncOnce,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: withDefault(cfg.Adapter.RequestTimeout, DefaultRequestTimeout),
			PullPageSize:   cfg.Adapter.PullPageSize,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			SyncInterval:        withDefault(cfg.Workers.SyncInterval, DefaultSyncInterval),
			DebounceDelay:       withDefault(cfg.Workers.DebounceDelay, DefaultDebounceDelay),
			MinAutoSyncGap:      withDefault(cfg.Workers.MinAutoSyncGap, DefaultMinAutoSyncGap),
			HealthCheckInterval: withDefault(cfg.Workers.HealthCheckInterval, DefaultHealthCheckInterval),
		},
		Server: ClientServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			RequestTimeout: withDefault(cfg.Server.RequestTimeout, DefaultRequestTimeout),
		},
	}
	if clientCfg.Adapter.PullPageSize <= 0 {
		clientCfg.Adapter.PullPageSize = DefaultPullPageSize
	}

	return clientCfg
}

func withDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
