// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import "github.com/canonical/portal-auth/internal/types"

// IsSuperAdmin holds for callers that bypass every portal check.
func IsSuperAdmin(p types.Principal) bool {
	return p.Role == types.RoleSuperAdmin
}

// IsLegacyAdmin holds for callers carrying the global admin role, which
// historically administers any portal without a membership.
func IsLegacyAdmin(p types.Principal) bool {
	return p.Role == types.RoleAdmin
}

// IsMembershipAdmin holds for an active membership with a portal admin role.
func IsMembershipAdmin(m *types.Membership) bool {
	return m != nil && m.Active && m.Role.IsAdmin()
}

// ResolvePortalID picks the portal a request operates on: the explicitly
// requested one, else the caller's home portal.
func ResolvePortalID(requested, home string) string {
	if requested != "" {
		return requested
	}
	return home
}

func PortalResource(portalID string) string {
	return "portal:" + portalID
}
