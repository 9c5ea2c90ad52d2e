// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import "fmt"

// Role is the coarse, account wide role. Roles are totally ordered:
// viewer < editor < admin < superadmin.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRanks = map[Role]int{
	RoleViewer:     1,
	RoleEditor:     2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Rank returns the position of r in the role order, 0 for unknown roles.
func (r Role) Rank() int {
	return roleRanks[r]
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Satisfies reports whether r ranks at least as high as required. Unknown
// roles satisfy nothing.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() || !required.Valid() {
		return false
	}
	return r.Rank() >= required.Rank()
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// PortalRole is the role an account holds inside a single portal.
type PortalRole string

const (
	PortalRoleViewer     PortalRole = "PORTAL_VIEWER"
	PortalRoleEditor     PortalRole = "PORTAL_EDITOR"
	PortalRoleAdmin      PortalRole = "PORTAL_ADMIN"
	PortalRoleSuperAdmin PortalRole = "SUPER_ADMIN"
)

func (r PortalRole) Valid() bool {
	switch r {
	case PortalRoleViewer, PortalRoleEditor, PortalRoleAdmin, PortalRoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the portal role grants portal administration.
func (r PortalRole) IsAdmin() bool {
	return r == PortalRoleAdmin || r == PortalRoleSuperAdmin
}

func ParsePortalRole(s string) (PortalRole, error) {
	r := PortalRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown portal role %q", s)
	}
	return r, nil
}
