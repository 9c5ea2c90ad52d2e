// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/portal-auth/internal/authorization"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/authentication"
)

var ErrInvalidPassword = errors.New("current password does not match")

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	tx      TransactorInterface
	hasher  authentication.PasswordHasherInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CreateAccount registers an account homed in portalID and, when a portal
// is given, a membership in it. Accounts with the admin or superadmin role,
// or a SUPER_ADMIN membership, can only be created by superadmins.
func (s *Service) CreateAccount(ctx context.Context, actor types.Principal, portalID string, req *CreateAccountRequest) (*types.Account, error) {
	ctx, span := s.tracer.Start(ctx, "account.Service.CreateAccount")
	defer span.End()

	role := types.RoleViewer
	if req.Role != "" {
		role = types.Role(req.Role)
	}

	if role.Satisfies(types.RoleAdmin) && !authorization.IsSuperAdmin(actor) {
		s.logger.Security().AuthzFailure(actor.AccountID, "role:"+string(role))
		return nil, authorization.ErrForbidden
	}

	portalRole := types.PortalRoleViewer
	if req.PortalRole != "" {
		portalRole = types.PortalRole(req.PortalRole)
	}

	if portalRole == types.PortalRoleSuperAdmin && !authorization.IsSuperAdmin(actor) {
		s.logger.Security().AuthzFailure(actor.AccountID, "portal_role:"+string(portalRole))
		return nil, authorization.ErrForbidden
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var created *types.Account
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.storage.CreateAccount(ctx, &types.Account{
			Email:        req.Email,
			Username:     req.Username,
			PasswordHash: passwordHash,
			Role:         role,
			PortalID:     portalID,
			Active:       true,
		})
		if err != nil {
			return err
		}

		if portalID == "" {
			return nil
		}

		_, err = s.storage.CreateMembership(ctx, &types.Membership{
			AccountID: created.ID,
			PortalID:  portalID,
			Role:      portalRole,
			Active:    true,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Security().UserCreated(actor.AccountID, created.ID)

	return created, nil
}

func (s *Service) GetAccount(ctx context.Context, accountID string) (*types.Account, error) {
	ctx, span := s.tracer.Start(ctx, "account.Service.GetAccount")
	defer span.End()

	return s.storage.GetAccountByID(ctx, accountID)
}

// ChangePassword replaces the caller's password after checking the current
// one, and signs out every other session.
func (s *Service) ChangePassword(ctx context.Context, principal types.Principal, currentPassword, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "account.Service.ChangePassword")
	defer span.End()

	a, err := s.storage.GetAccountByID(ctx, principal.AccountID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(a.PasswordHash, currentPassword) {
		s.logger.Security().AuthnLoginFailure(a.ID, "")
		return ErrInvalidPassword
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.storage.UpdatePasswordHash(ctx, a.ID, passwordHash); err != nil {
			return err
		}

		_, err := s.storage.RevokeRefreshTokensByAccountID(ctx, a.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Security().AuthnPasswordChange(a.ID)

	return nil
}

func NewService(
	storage StorageInterface,
	tx TransactorInterface,
	hasher authentication.PasswordHasherInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		tx:      tx,
		hasher:  hasher,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
