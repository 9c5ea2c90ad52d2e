// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(hash, "correct horse") {
		t.Fatalf("hash must not contain the plaintext")
	}

	other, _ := h.Hash("correct horse")
	if hash == other {
		t.Errorf("expected salted hashes to differ")
	}

	tests := []struct {
		name     string
		hash     string
		password string
		expected bool
	}{
		{"match", hash, "correct horse", true},
		{"mismatch", hash, "wrong", false},
		{"missing account", "", "correct horse", false},
		{"corrupt hash", "not-a-hash", "correct horse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Compare(tt.hash, tt.password); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBcryptHasherCost(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost + 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hash, _ := h.Hash("pw")
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.MinCost+1 {
		t.Errorf("expected cost %d, got %d (%v)", bcrypt.MinCost+1, cost, err)
	}
}

func TestNewValidatorPasswordBytes(t *testing.T) {
	type request struct {
		Password string `validate:"required,passwordbytes"`
	}

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "ascii at the limit", password: strings.Repeat("a", MaxPasswordBytes), valid: true},
		{name: "ascii over the limit", password: strings.Repeat("a", MaxPasswordBytes+1)},
		{name: "multibyte within 72 runes but over 72 bytes", password: strings.Repeat("é", 72)},
		{name: "multibyte at the byte limit", password: strings.Repeat("é", MaxPasswordBytes/2), valid: true},
	}

	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := NewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(request{Password: tt.password})
			if (err == nil) != tt.valid {
				t.Fatalf("expected valid=%v, got %v", tt.valid, err)
			}

			// whatever passes validation must be hashable
			if tt.valid {
				if _, err := h.Hash(tt.password); err != nil {
					t.Errorf("unexpected hash error: %v", err)
				}
			}
		})
	}
}
