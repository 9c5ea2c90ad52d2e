// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

type CreateAccountRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Password   string `json:"password" validate:"required,min=8,passwordbytes"`
	Role       string `json:"role" validate:"omitempty,oneof=viewer editor admin superadmin"`
	PortalRole string `json:"portalRole" validate:"omitempty,oneof=PORTAL_VIEWER PORTAL_EDITOR PORTAL_ADMIN SUPER_ADMIN"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,passwordbytes"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,passwordbytes"`
}
