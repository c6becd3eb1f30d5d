// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the remote sync server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync engine
// from the underlying protocol. The package ships a JSON-over-HTTPS
// implementation ([NewHTTPServerAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401, [ErrTooManyRequests] for 429).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-task-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the sync
// server. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// SetServerURL points the adapter at a different server. Used when the
	// sync config carries a server URL that differs from the static
	// configuration.
	SetServerURL(raw string) error

	// Push submits a batch of encrypted operations. A transport integrity
	// hash of the body is attached when a hash key is configured.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Pull fetches one page of server changes.
	Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error)

	// RefreshToken exchanges the current bearer token for a new one.
	RefreshToken(ctx context.Context) (models.TokenRefreshResponse, error)

	// Ping checks that the server is reachable.
	Ping(ctx context.Context) error
}
