// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import "time"

const TokenTypeBearer = "Bearer"

// Config is built once at startup and never mutated.
type Config struct {
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

// TokenPair is returned by login and refresh. RefreshToken is the raw value
// and is never recoverable afterwards.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,passwordbytes"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,passwordbytes"`
}

type OKResponse struct {
	OK         bool   `json:"ok"`
	ResetToken string `json:"resetToken,omitempty"`
}
