// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package portal

import "github.com/canonical/portal-auth/internal/types"

type CreatePortalRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

type AddMemberRequest struct {
	AccountID string `json:"accountId" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=PORTAL_VIEWER PORTAL_EDITOR PORTAL_ADMIN SUPER_ADMIN"`
}

type UpdateMemberRequest struct {
	Role   *string `json:"role" validate:"omitempty,oneof=PORTAL_VIEWER PORTAL_EDITOR PORTAL_ADMIN SUPER_ADMIN"`
	Active *bool   `json:"active"`
}

type ListPortalsResponse struct {
	Portals []*types.Portal `json:"portals"`
}

type ListMembersResponse struct {
	Members []*types.Membership `json:"members"`
}
