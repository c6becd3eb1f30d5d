// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// AuthCredentials is what the external login flow hands over to the sync
// subsystem once the user has authenticated.
type AuthCredentials struct {
	Token      string     `json:"token"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	DeviceName string     `json:"device_name,omitempty"`
	ServerURL  string     `json:"server_url,omitempty"`

	// ConflictStrategy overrides the device default when set.
	ConflictStrategy ConflictStrategy `json:"conflict_strategy,omitempty"`
}

// TokenRefreshResponse is returned by POST /auth/refresh.
type TokenRefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
