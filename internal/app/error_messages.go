// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// sync service, the local control API and the one-shot report.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies, sync results or log entries to describe the outcome
// of an operation. Keeping them in one place ensures consistent wording.
package app

const (
	// MsgInvalidDataProvided is returned when a control API request body
	// cannot be decoded or fails basic validation.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned when an unexpected failure occurs
	// that the caller cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgSyncDisabled is returned when a sync is requested while sync is
	// turned off for this device.
	MsgSyncDisabled = "sync is disabled"

	// MsgSyncAlreadyRunning is returned when a request was parked behind a
	// sync that is already in progress.
	MsgSyncAlreadyRunning = "sync already in progress, request queued"

	// MsgSyncBackoff is returned to automatic syncs that were skipped because
	// a retry backoff window is still open.
	MsgSyncBackoff = "sync postponed: waiting for retry backoff"

	// MsgSyncWillRetry is appended to transient failures of user-triggered
	// syncs while automatic retries remain.
	MsgSyncWillRetry = "temporary problem, sync will retry automatically"

	// MsgCheckConnection is returned once the retry budget is exhausted.
	// No further automatic retries happen until a new trigger occurs.
	MsgCheckConnection = "sync keeps failing, check your connection"

	// MsgSessionRefreshed is returned when an auth failure was recovered by
	// a token refresh and the user may retry the sync.
	MsgSessionRefreshed = "session refreshed, please retry the sync"

	// MsgReauthRequired is returned when the token could not be refreshed
	// and the user must sign in again.
	MsgReauthRequired = "session expired, please sign in again"

	// MsgEncryptionLocked is returned when a sync cannot run because the
	// encryption key has not been unlocked.
	MsgEncryptionLocked = "encryption key is locked"

	// MsgSyncEnabled is returned after sync has been switched on.
	MsgSyncEnabled = "sync enabled"

	// MsgSyncDisabledOK is returned after sync has been switched off.
	MsgSyncDisabledOK = "sync disabled"

	// MsgPendingCancelled is returned after queued sync requests were dropped.
	MsgPendingCancelled = "queued sync requests cancelled"

	// MsgMissingCredentials is returned when an enable request lacks a token
	// or user identity.
	MsgMissingCredentials = "token and user id are required"

	// MsgTaskNotFound is returned when a task id is not in the local store.
	MsgTaskNotFound = "task not found"

	// MsgTaskDeleted is returned after a task was removed locally.
	MsgTaskDeleted = "task deleted"
)
