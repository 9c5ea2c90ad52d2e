// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/portal-auth/internal/types"
)

type AuthorizerInterface interface {
	RequireRole(context.Context, types.Principal, types.Role) error
	AuthorizePortalAdmin(context.Context, types.Principal, string) (string, error)
}

// MembershipStoreInterface is the subset of the storage the authorizer reads from.
type MembershipStoreInterface interface {
	GetMembership(ctx context.Context, accountID, portalID string) (*types.Membership, error)
}
