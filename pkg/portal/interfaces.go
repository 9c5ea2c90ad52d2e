// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package portal

import (
	"context"
	"net/http"

	"github.com/canonical/portal-auth/internal/types"
)

type ServiceInterface interface {
	CreatePortal(ctx context.Context, actor types.Principal, name string) (*types.Portal, error)
	ListPortals(ctx context.Context, principal types.Principal) ([]*types.Portal, error)
	ListMembers(ctx context.Context, portalID string) ([]*types.Membership, error)
	AddMember(ctx context.Context, actor types.Principal, portalID, accountID string, role types.PortalRole) (*types.Membership, error)
	UpdateMember(ctx context.Context, actor types.Principal, portalID, accountID string, role *types.PortalRole, active *bool) (*types.Membership, error)
	RemoveMember(ctx context.Context, actor types.Principal, portalID, accountID string) error
}

type StorageInterface interface {
	CreatePortal(ctx context.Context, name string) (*types.Portal, error)
	ListPortals(ctx context.Context) ([]*types.Portal, error)
	ListPortalsByAccountID(ctx context.Context, accountID string) ([]*types.Portal, error)
	CreateMembership(ctx context.Context, membership *types.Membership) (*types.Membership, error)
	GetMembership(ctx context.Context, accountID, portalID string) (*types.Membership, error)
	ListMembershipsByPortalID(ctx context.Context, portalID string) ([]*types.Membership, error)
	UpdateMembership(ctx context.Context, accountID, portalID string, role types.PortalRole, active bool) (*types.Membership, error)
}

// AuthMiddlewareInterface is the guard chain protecting the routes.
type AuthMiddlewareInterface interface {
	Authenticate() func(http.Handler) http.Handler
	RequireRole(min types.Role) func(http.Handler) http.Handler
	RequirePortalAdmin() func(http.Handler) http.Handler
}
