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

func (s *Storage) CreatePortal(ctx context.Context, name string) (*types.Portal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreatePortal")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	var p types.Portal
	err = s.db.Statement(ctx).
		Insert("portals").
		Columns("id", "name").
		Values(id, name).
		Suffix("RETURNING id, name, created_at").
		QueryRowContext(ctx).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert portal: %w", classify(err))
	}

	return &p, nil
}

func (s *Storage) GetPortalByID(ctx context.Context, id string) (*types.Portal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPortalByID")
	defer span.End()

	var p types.Portal
	err := s.db.Statement(ctx).
		Select("id", "name", "created_at").
		From("portals").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get portal: %w", err)
	}

	return &p, nil
}

func (s *Storage) ListPortals(ctx context.Context) ([]*types.Portal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListPortals")
	defer span.End()

	return s.queryPortals(ctx,
		s.db.Statement(ctx).
			Select("id", "name", "created_at").
			From("portals").
			OrderBy("name"),
	)
}

// ListPortalsByAccountID returns the portals the account holds an active membership in.
func (s *Storage) ListPortalsByAccountID(ctx context.Context, accountID string) ([]*types.Portal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListPortalsByAccountID")
	defer span.End()

	return s.queryPortals(ctx,
		s.db.Statement(ctx).
			Select("p.id", "p.name", "p.created_at").
			From("portals p").
			Join("memberships m ON p.id = m.portal_id").
			Where(sq.Eq{"m.account_id": accountID, "m.active": true}).
			OrderBy("p.name"),
	)
}

func (s *Storage) queryPortals(ctx context.Context, query sq.SelectBuilder) ([]*types.Portal, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list portals: %w", err)
	}
	defer rows.Close()

	portals := make([]*types.Portal, 0)
	for rows.Next() {
		var p types.Portal
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portal: %w", err)
		}
		portals = append(portals, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return portals, nil
}
