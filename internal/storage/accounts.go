// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/portal-auth/internal/types"
)

var accountColumns = []string{"id", "email", "username", "password_hash", "role", "portal_id", "active", "created_at", "updated_at"}

func scanAccount(row rowScanner) (*types.Account, error) {
	var a types.Account
	var portalID sql.NullString

	if err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Role, &portalID, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.PortalID = portalID.String

	return &a, nil
}

func (s *Storage) CreateAccount(ctx context.Context, a *types.Account) (*types.Account, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateAccount")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanAccount(
		s.db.Statement(ctx).
			Insert("accounts").
			Columns("id", "email", "username", "password_hash", "role", "portal_id", "active").
			Values(id, a.Email, a.Username, a.PasswordHash, string(a.Role), nullString(a.PortalID), a.Active).
			Suffix("RETURNING "+joinColumns(accountColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", classify(err))
	}

	return created, nil
}

func (s *Storage) GetAccountByID(ctx context.Context, id string) (*types.Account, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetAccountByID")
	defer span.End()

	a, err := scanAccount(
		s.db.Statement(ctx).
			Select(accountColumns...).
			From("accounts").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return a, nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetAccountByEmail")
	defer span.End()

	a, err := scanAccount(
		s.db.Statement(ctx).
			Select(accountColumns...).
			From("accounts").
			Where(sq.Expr("LOWER(email) = LOWER(?)", email)).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return a, nil
}

// GetAccountByIdentifier matches either the email (case insensitive) or the
// username. Anything but exactly one match is reported as ErrNotFound.
func (s *Storage) GetAccountByIdentifier(ctx context.Context, identifier string) (*types.Account, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetAccountByIdentifier")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(accountColumns...).
		From("accounts").
		Where(sq.Or{
			sq.Expr("LOWER(email) = LOWER(?)", identifier),
			sq.Eq{"username": identifier},
		}).
		Limit(2).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	defer rows.Close()

	var accounts []*types.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(accounts) != 1 {
		if len(accounts) > 1 {
			s.logger.Warnf("identifier matches more than one account")
		}
		return nil, ErrNotFound
	}

	return accounts[0], nil
}

func (s *Storage) UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdatePasswordHash")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("accounts").
		Set("password_hash", passwordHash).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": accountID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetAccountActive")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("accounts").
		Set("active", active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": accountID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	return expectAffected(res)
}
