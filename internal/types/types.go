// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import "time"

// Account is a principal able to authenticate. Only the password hash is
// ever persisted.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	PortalID     string    `json:"portalId,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Portal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Membership links an account to a portal with a portal scoped role.
type Membership struct {
	ID        string     `json:"id"`
	AccountID string     `json:"accountId"`
	PortalID  string     `json:"portalId"`
	Role      PortalRole `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RefreshToken is the stored side of a refresh token, keyed by the hash of
// the raw value.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

type PasswordResetToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Principal is the identity decoded from a verified access token.
type Principal struct {
	AccountID string
	Role      Role
	PortalID  string
}
