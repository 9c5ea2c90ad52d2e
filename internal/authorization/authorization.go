// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrPortalIDRequired = errors.New("portal id required")
)

var _ AuthorizerInterface = (*Authorizer)(nil)

type Authorizer struct {
	memberships       MembershipStoreInterface
	legacyAdminBypass bool

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RequireRole admits callers whose role ranks at least min.
func (a *Authorizer) RequireRole(ctx context.Context, p types.Principal, min types.Role) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.RequireRole")
	defer span.End()

	if p.Role.Satisfies(min) {
		return nil
	}

	a.deny(p, "role:"+string(min))
	return ErrForbidden
}

// AuthorizePortalAdmin admits callers allowed to administer a portal and
// returns the portal the request operates on. Superadmins are admitted
// unconditionally, in which case the portal may be empty.
func (a *Authorizer) AuthorizePortalAdmin(ctx context.Context, p types.Principal, requestedPortalID string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.AuthorizePortalAdmin")
	defer span.End()

	portalID := ResolvePortalID(requestedPortalID, p.PortalID)

	if IsSuperAdmin(p) {
		return portalID, nil
	}

	if portalID == "" {
		a.recordOutcome("portal_admin", "portal_required")
		return "", ErrPortalIDRequired
	}

	if a.legacyAdminBypass && IsLegacyAdmin(p) {
		a.logger.Security().AuthzAdmin(p.AccountID, PortalResource(portalID))
		a.recordOutcome("portal_admin", "legacy_bypass")
		return portalID, nil
	}

	m, err := a.memberships.GetMembership(ctx, p.AccountID, portalID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("failed to look up membership: %w", err)
	}

	if !IsMembershipAdmin(m) {
		a.deny(p, PortalResource(portalID))
		return "", ErrForbidden
	}

	a.recordOutcome("portal_admin", "allowed")
	return portalID, nil
}

func (a *Authorizer) deny(p types.Principal, resource string) {
	a.logger.Security().AuthzFailure(p.AccountID, resource)
	a.recordOutcome("authorize", "forbidden")
}

func (a *Authorizer) recordOutcome(event, outcome string) {
	if err := a.monitor.IncAuthEventMetric(map[string]string{"event": event, "outcome": outcome}); err != nil {
		a.logger.Debugf("failed to record auth event: %v", err)
	}
}

// NewAuthorizer builds the gate. legacyAdminBypass lets the global admin
// role administer portals it holds no membership in.
func NewAuthorizer(memberships MembershipStoreInterface, legacyAdminBypass bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	return &Authorizer{
		memberships:       memberships,
		legacyAdminBypass: legacyAdminBypass,
		tracer:            tracer,
		monitor:           monitor,
		logger:            logger,
	}
}
