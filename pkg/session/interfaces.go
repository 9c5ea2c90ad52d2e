// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"time"

	"github.com/canonical/portal-auth/internal/types"
)

type ServiceInterface interface {
	Login(ctx context.Context, identifier, password, clientIP string) (*TokenPair, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, principal types.Principal, rawRefreshToken string) error
	LogoutAll(ctx context.Context, principal types.Principal) error
	// ForgotPassword returns the raw reset token, or "" when no active
	// account matches the email
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, rawResetToken, newPassword string) error
}

type StorageInterface interface {
	GetAccountByID(ctx context.Context, id string) (*types.Account, error)
	GetAccountByIdentifier(ctx context.Context, identifier string) (*types.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*types.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error

	CreateRefreshToken(ctx context.Context, t *types.RefreshToken) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
	DeleteRefreshToken(ctx context.Context, tokenHash, accountID string) (int64, error)
	RevokeRefreshTokensByAccountID(ctx context.Context, accountID string) (int64, error)

	CreatePasswordResetToken(ctx context.Context, t *types.PasswordResetToken) error
	ConsumePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error)
	DeletePasswordResetTokensByAccountID(ctx context.Context, accountID string) (int64, error)
}

type TransactorInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type NotifierInterface interface {
	// NotifyPasswordReset delivers a raw reset token to the account owner
	NotifyPasswordReset(ctx context.Context, account *types.Account, rawToken string, expiresAt time.Time) error
}
