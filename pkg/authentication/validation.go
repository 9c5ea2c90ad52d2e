// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt accepts. The limit is in
// bytes, so multibyte passwords reach it with fewer characters.
const MaxPasswordBytes = 72

// PasswordBytesTag is the struct tag checking a password against MaxPasswordBytes.
const PasswordBytesTag = "passwordbytes"

// NewValidator returns a request validator that knows the password tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation(PasswordBytesTag, func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})

	return v
}
