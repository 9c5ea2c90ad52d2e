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

var membershipColumns = []string{"id", "account_id", "portal_id", "role", "active", "created_at", "updated_at"}

func scanMembership(row rowScanner) (*types.Membership, error) {
	var m types.Membership
	if err := row.Scan(&m.ID, &m.AccountID, &m.PortalID, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMembership inserts a new link; a second link for the same account
// and portal fails with ErrDuplicateKey.
func (s *Storage) CreateMembership(ctx context.Context, m *types.Membership) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateMembership")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanMembership(
		s.db.Statement(ctx).
			Insert("memberships").
			Columns("id", "account_id", "portal_id", "role", "active").
			Values(id, m.AccountID, m.PortalID, string(m.Role), m.Active).
			Suffix("RETURNING "+joinColumns(membershipColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", classify(err))
	}

	return created, nil
}

func (s *Storage) GetMembership(ctx context.Context, accountID, portalID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	m, err := scanMembership(
		s.db.Statement(ctx).
			Select(membershipColumns...).
			From("memberships").
			Where(sq.Eq{"account_id": accountID, "portal_id": portalID}).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

func (s *Storage) ListMembershipsByPortalID(ctx context.Context, portalID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembershipsByPortalID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(membershipColumns...).
		From("memberships").
		Where(sq.Eq{"portal_id": portalID}).
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	members := make([]*types.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

func (s *Storage) UpdateMembership(ctx context.Context, accountID, portalID string, role types.PortalRole, active bool) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMembership")
	defer span.End()

	m, err := scanMembership(
		s.db.Statement(ctx).
			Update("memberships").
			Set("role", string(role)).
			Set("active", active).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"account_id": accountID, "portal_id": portalID}).
			Suffix("RETURNING "+joinColumns(membershipColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}

	return m, nil
}
