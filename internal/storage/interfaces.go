// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/portal-auth/internal/types"
)

type StorageInterface interface {
	CreateAccount(ctx context.Context, a *types.Account) (*types.Account, error)
	GetAccountByID(ctx context.Context, id string) (*types.Account, error)
	GetAccountByIdentifier(ctx context.Context, identifier string) (*types.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*types.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error
	SetAccountActive(ctx context.Context, accountID string, active bool) error

	CreatePortal(ctx context.Context, name string) (*types.Portal, error)
	GetPortalByID(ctx context.Context, id string) (*types.Portal, error)
	ListPortals(ctx context.Context) ([]*types.Portal, error)
	ListPortalsByAccountID(ctx context.Context, accountID string) ([]*types.Portal, error)

	CreateMembership(ctx context.Context, membership *types.Membership) (*types.Membership, error)
	GetMembership(ctx context.Context, accountID, portalID string) (*types.Membership, error)
	ListMembershipsByPortalID(ctx context.Context, portalID string) ([]*types.Membership, error)
	UpdateMembership(ctx context.Context, accountID, portalID string, role types.PortalRole, active bool) (*types.Membership, error)

	CreateRefreshToken(ctx context.Context, t *types.RefreshToken) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
	DeleteRefreshToken(ctx context.Context, tokenHash, accountID string) (int64, error)
	RevokeRefreshTokensByAccountID(ctx context.Context, accountID string) (int64, error)
	DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	CreatePasswordResetToken(ctx context.Context, t *types.PasswordResetToken) error
	ConsumePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
	DeletePasswordResetTokensByAccountID(ctx context.Context, accountID string) (int64, error)
	DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error)
}
