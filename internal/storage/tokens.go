// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/portal-auth/internal/types"
)

func (s *Storage) CreateRefreshToken(ctx context.Context, t *types.RefreshToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.CreateRefreshToken")
	defer span.End()

	id, err := newID()
	if err != nil {
		return err
	}

	_, err = s.db.Statement(ctx).
		Insert("refresh_tokens").
		Columns("id", "account_id", "token_hash", "expires_at").
		Values(id, t.AccountID, t.TokenHash, t.ExpiresAt).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", classify(err))
	}

	return nil
}

// ConsumeRefreshToken deletes the live record matching tokenHash and returns
// its owner. The delete is the single use gate: of two concurrent callers
// only one gets the row back, the other sees ErrNotFound.
func (s *Storage) ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ConsumeRefreshToken")
	defer span.End()

	var accountID string
	err := s.db.Statement(ctx).
		Delete("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash, "revoked": false}).
		Where(sq.Gt{"expires_at": now}).
		Suffix("RETURNING account_id").
		QueryRowContext(ctx).
		Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to consume refresh token: %w", err)
	}

	return accountID, nil
}

func (s *Storage) DeleteRefreshToken(ctx context.Context, tokenHash, accountID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteRefreshToken")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash, "account_id": accountID}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return res.RowsAffected()
}

// RevokeRefreshTokensByAccountID flags every outstanding refresh token of
// the account as revoked; the rows stay until pruned.
func (s *Storage) RevokeRefreshTokensByAccountID(ctx context.Context, accountID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.RevokeRefreshTokensByAccountID")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("refresh_tokens").
		Set("revoked", true).
		Where(sq.Eq{"account_id": accountID, "revoked": false}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	return res.RowsAffected()
}

// DeleteStaleRefreshTokens removes expired and revoked records.
func (s *Storage) DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteStaleRefreshTokens")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("refresh_tokens").
		Where(sq.Or{
			sq.LtOrEq{"expires_at": now},
			sq.Eq{"revoked": true},
		}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune refresh tokens: %w", err)
	}

	return res.RowsAffected()
}

func (s *Storage) CreatePasswordResetToken(ctx context.Context, t *types.PasswordResetToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.CreatePasswordResetToken")
	defer span.End()

	id, err := newID()
	if err != nil {
		return err
	}

	_, err = s.db.Statement(ctx).
		Insert("password_reset_tokens").
		Columns("id", "account_id", "token_hash", "expires_at").
		Values(id, t.AccountID, t.TokenHash, t.ExpiresAt).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert password reset token: %w", classify(err))
	}

	return nil
}

// ConsumePasswordResetToken deletes the unexpired record matching tokenHash
// and returns its owner.
func (s *Storage) ConsumePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ConsumePasswordResetToken")
	defer span.End()

	var accountID string
	err := s.db.Statement(ctx).
		Delete("password_reset_tokens").
		Where(sq.Eq{"token_hash": tokenHash}).
		Where(sq.Gt{"expires_at": now}).
		Suffix("RETURNING account_id").
		QueryRowContext(ctx).
		Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to consume password reset token: %w", err)
	}

	return accountID, nil
}

func (s *Storage) DeletePasswordResetTokensByAccountID(ctx context.Context, accountID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeletePasswordResetTokensByAccountID")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("password_reset_tokens").
		Where(sq.Eq{"account_id": accountID}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete password reset tokens: %w", err)
	}

	return res.RowsAffected()
}

func (s *Storage) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteExpiredPasswordResetTokens")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("password_reset_tokens").
		Where(sq.LtOrEq{"expires_at": now}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune password reset tokens: %w", err)
	}

	return res.RowsAffected()
}
