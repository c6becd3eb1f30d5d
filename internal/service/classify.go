// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

var authErrors = []error{
	ErrReauthRequired,
	ErrTokenRefreshFailed,
	adapter.ErrUnauthorized,
	adapter.ErrForbidden,
}

var permanentErrors = []error{
	ErrSyncDisabled,
	ErrEncryptorNotReady,
	ErrConsolidationInvariant,
	ErrChecksumMismatch,
	ErrInvalidRemoteTask,
	ErrInvalidOperation,
	adapter.ErrBadRequest,
	adapter.ErrNotFound,
	adapter.ErrConflict,
	adapter.ErrUnprocessable,
	adapter.ErrDecodingResponse,
	adapter.ErrInvalidServerURL,
	crypto.ErrDecryptionFailed,
	crypto.ErrInvalidEncoding,
	crypto.ErrInvalidNonce,
	crypto.ErrNotInitialized,
}

// ClassifyError decides how a failed sync is recovered from:
//
//   - Auth (401/403, refresh failures): one token refresh, then re-auth.
//   - Permanent (400/404/409/422, validation, decryption): never retried
//     automatically and never touches the backoff counters.
//   - Transient (network, timeouts, 5xx, 429, busy local database): backoff
//     and retry.
//
// Anything not recognized is transient so that data is retried rather than
// silently dropped.
func ClassifyError(err error) models.ErrorCategory {
	if err == nil {
		return models.ErrorCategoryNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorCategoryTransient
	}

	for _, target := range authErrors {
		if errors.Is(err, target) {
			return models.ErrorCategoryAuth
		}
	}

	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return models.ErrorCategoryPermanent
		}
	}

	if class, ok := store.ClassifySQLiteError(err); ok && class == store.NonRetryable {
		return models.ErrorCategoryPermanent
	}

	return models.ErrorCategoryTransient
}

// isUnauthorized reports whether err is a transport 401/403.
func isUnauthorized(err error) bool {
	return errors.Is(err, adapter.ErrUnauthorized) || errors.Is(err, adapter.ErrForbidden)
}
