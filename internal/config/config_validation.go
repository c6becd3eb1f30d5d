// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"strings"

	"github.com/MKhiriev/go-task-sync/models"
)

// validate checks the merged [StructuredConfig]. Source-level checks live in
// [ClientConfig.validate]; nothing is enforced at this level yet.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval < cfg.Workers.MinAutoSyncGap {
		return ErrInvalidWorkerConfigs
	}

	if s := cfg.App.ConflictStrategy; s != "" && !models.ConflictStrategy(s).Valid() {
		return ErrInvalidAppConfigs
	}

	return nil
}
