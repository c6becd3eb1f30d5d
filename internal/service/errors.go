package service

import "errors"

var (
	ErrSyncDisabled      = errors.New("sync is disabled")
	ErrBackoffActive     = errors.New("retry backoff is active")
	ErrEncryptorNotReady = errors.New("encryptor is not initialized")

	ErrTokenRefreshFailed = errors.New("token refresh failed")
	ErrReauthRequired     = errors.New("re-authentication required")
	ErrInvalidCredentials = errors.New("invalid auth credentials")

	ErrInvalidOperation       = errors.New("invalid pending operation")
	ErrConsolidationInvariant = errors.New("consolidation left more than one operation for an entity")
	ErrChecksumMismatch       = errors.New("checksum mismatch")
	ErrInvalidRemoteTask      = errors.New("invalid remote task")
	ErrInvalidTask            = errors.New("invalid task")
)
