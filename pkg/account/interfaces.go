// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"context"
	"net/http"

	"github.com/canonical/portal-auth/internal/types"
)

type ServiceInterface interface {
	CreateAccount(ctx context.Context, actor types.Principal, portalID string, req *CreateAccountRequest) (*types.Account, error)
	GetAccount(ctx context.Context, accountID string) (*types.Account, error)
	ChangePassword(ctx context.Context, principal types.Principal, currentPassword, newPassword string) error
}

type StorageInterface interface {
	CreateAccount(ctx context.Context, a *types.Account) (*types.Account, error)
	GetAccountByID(ctx context.Context, id string) (*types.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error
	CreateMembership(ctx context.Context, membership *types.Membership) (*types.Membership, error)
	RevokeRefreshTokensByAccountID(ctx context.Context, accountID string) (int64, error)
}

type TransactorInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

// AuthMiddlewareInterface is the guard chain protecting the routes.
type AuthMiddlewareInterface interface {
	Authenticate() func(http.Handler) http.Handler
	RequireRole(min types.Role) func(http.Handler) http.Handler
	RequirePortalAdmin() func(http.Handler) http.Handler
}
