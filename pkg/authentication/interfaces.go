// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"time"

	"github.com/canonical/portal-auth/internal/types"
)

type TokenIssuerInterface interface {
	// IssueAccessToken signs a short-lived access token for the principal
	// and returns it with its expiry
	IssueAccessToken(ctx context.Context, principal types.Principal) (string, time.Time, error)
}

type TokenVerifierInterface interface {
	// VerifyToken checks signature, issuer and expiry of a raw access token
	// and returns the principal it was issued for
	VerifyToken(ctx context.Context, rawToken string) (*types.Principal, error)
}

type PasswordHasherInterface interface {
	// Hash returns the salted one-way hash of a plaintext password
	Hash(password string) (string, error)
	// Compare reports whether the password matches the hash. An empty hash
	// still costs one full comparison
	Compare(hash, password string) bool
}
