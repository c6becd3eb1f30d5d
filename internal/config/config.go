// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// daemon. It is populated by merging values from environment variables,
// command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds device identity, logging and encryption settings.
	App App `envPrefix:"APP_"`

	// Storage holds the local sqlite database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the local control API listen settings.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote sync server endpoint settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds timer settings of the background sync triggers and the
	// health monitor.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for local persistence.
type Storage struct {
	// DB holds the sqlite connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level settings.
type App struct {
	// HashKey is the HMAC key used for request integrity headers
	// (HashSHA256) on push requests.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// DeviceName is a human-friendly label reported to the server.
	// Env: APP_DEVICE_NAME
	DeviceName string `env:"DEVICE_NAME"`

	// EncryptionPassphrase unlocks the default encryptor at startup.
	// Env: APP_ENCRYPTION_PASSPHRASE
	EncryptionPassphrase string `env:"ENCRYPTION_PASSPHRASE"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// LogFile is the path the daemon appends its JSON log to.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// ConflictStrategy is applied when sync gets enabled without an explicit
	// strategy: "last_write_wins" or "manual".
	// Env: APP_CONFLICT_STRATEGY
	ConflictStrategy string `env:"CONFLICT_STRATEGY"`

	// SyncOnce makes the daemon run a single user-priority sync, print a
	// report, and exit.
	// Env: APP_SYNC_ONCE
	SyncOnce bool `env:"SYNC_ONCE"`
}

// Server holds the local control API settings.
type Server struct {
	// HTTPAddress is the "host:port" the control API listens on. Empty
	// disables the API.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single control API request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds connection settings for the local sqlite database.
type DB struct {
	// DSN is the sqlite file path or DSN (e.g. "file:tasks.db?_fk=1").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds settings for the remote sync server.
type Adapter struct {
	// HTTPAddress is the base URL of the sync server.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the timeout of a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// PullPageSize bounds the number of tasks returned per pull page.
	// Env: ADAPTER_PULL_PAGE_SIZE
	PullPageSize int `env:"PULL_PAGE_SIZE"`
}

// Workers holds background trigger and health check timing.
type Workers struct {
	// SyncInterval is the period of the automatic sync timer.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// DebounceDelay is the quiet period after a local change before an
	// automatic sync is triggered.
	// Env: WORKERS_DEBOUNCE_DELAY
	DebounceDelay time.Duration `env:"DEBOUNCE_DELAY"`

	// MinAutoSyncGap is the floor between two automatic syncs.
	// Env: WORKERS_MIN_AUTO_SYNC_GAP
	MinAutoSyncGap time.Duration `env:"MIN_AUTO_SYNC_GAP"`

	// HealthCheckInterval is the period of the health monitor.
	// Env: WORKERS_HEALTH_CHECK_INTERVAL
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources in the following priority order (last source wins for
// non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
