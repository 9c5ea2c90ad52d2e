// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var _ PasswordHasherInterface = (*BcryptHasher)(nil)

type BcryptHasher struct {
	cost int
	// compared against when the account does not exist, so a miss costs
	// as much as a wrong password
	dummy []byte
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	seed := make([]byte, 24)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to seed dummy hash: %w", err)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(base64.RawURLEncoding.EncodeToString(seed)), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to build dummy hash: %w", err)
	}

	return &BcryptHasher{cost: cost, dummy: dummy}, nil
}
