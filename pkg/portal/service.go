// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package portal

import (
	"context"
	"fmt"

	"github.com/canonical/portal-auth/internal/authorization"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) CreatePortal(ctx context.Context, actor types.Principal, name string) (*types.Portal, error) {
	ctx, span := s.tracer.Start(ctx, "portal.Service.CreatePortal")
	defer span.End()

	created, err := s.storage.CreatePortal(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal: %w", err)
	}

	s.logger.Infof("portal %s (%s) created by %s", created.ID, created.Name, actor.AccountID)

	return created, nil
}

// ListPortals returns every portal for superadmins and the portals the
// caller holds an active membership in otherwise.
func (s *Service) ListPortals(ctx context.Context, principal types.Principal) ([]*types.Portal, error) {
	ctx, span := s.tracer.Start(ctx, "portal.Service.ListPortals")
	defer span.End()

	if authorization.IsSuperAdmin(principal) {
		return s.storage.ListPortals(ctx)
	}

	return s.storage.ListPortalsByAccountID(ctx, principal.AccountID)
}

func (s *Service) ListMembers(ctx context.Context, portalID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "portal.Service.ListMembers")
	defer span.End()

	return s.storage.ListMembershipsByPortalID(ctx, portalID)
}

func (s *Service) AddMember(ctx context.Context, actor types.Principal, portalID, accountID string, role types.PortalRole) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "portal.Service.AddMember")
	defer span.End()

	if err := s.checkGrant(actor, role); err != nil {
		return nil, err
	}

	m, err := s.storage.CreateMembership(ctx, &types.Membership{
		AccountID: accountID,
		PortalID:  portalID,
		Role:      role,
		Active:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.Security().UserUpdated(actor.AccountID, accountID)

	return m, nil
}

// UpdateMember changes the role and/or active flag of a membership; nil
// fields keep their current value.
func (s *Service) UpdateMember(ctx context.Context, actor types.Principal, portalID, accountID string, role *types.PortalRole, active *bool) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "portal.Service.UpdateMember")
	defer span.End()

	current, err := s.storage.GetMembership(ctx, accountID, portalID)
	if err != nil {
		return nil, err
	}

	newRole, newActive := current.Role, current.Active
	if role != nil {
		if err := s.checkGrant(actor, *role); err != nil {
			return nil, err
		}
		newRole = *role
	}
	if active != nil {
		newActive = *active
	}

	m, err := s.storage.UpdateMembership(ctx, accountID, portalID, newRole, newActive)
	if err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.logger.Security().UserUpdated(actor.AccountID, accountID)

	return m, nil
}

// RemoveMember deactivates the membership; rows are never deleted.
func (s *Service) RemoveMember(ctx context.Context, actor types.Principal, portalID, accountID string) error {
	ctx, span := s.tracer.Start(ctx, "portal.Service.RemoveMember")
	defer span.End()

	inactive := false
	_, err := s.UpdateMember(ctx, actor, portalID, accountID, nil, &inactive)
	return err
}

// checkGrant keeps the SUPER_ADMIN portal role in the hands of superadmins.
func (s *Service) checkGrant(actor types.Principal, role types.PortalRole) error {
	if role == types.PortalRoleSuperAdmin && !authorization.IsSuperAdmin(actor) {
		s.logger.Security().AuthzFailure(actor.AccountID, "portal_role:"+string(role))
		return authorization.ErrForbidden
	}

	return nil
}
