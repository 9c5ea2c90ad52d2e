// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/portal-auth/internal/types"
)

// Claims is the access token payload. The subject is the account id.
type Claims struct {
	Role     string `json:"role"`
	PortalID string `json:"portalId,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() types.Principal {
	return types.Principal{
		AccountID: c.Subject,
		Role:      types.Role(c.Role),
		PortalID:  c.PortalID,
	}
}
