// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("DEBUG")
	}()
}

func TestInvalidLevel(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("invalid")
	}()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"warn", zapcore.WarnLevel},
		{"nonsense", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if lvl := parseLevel(tt.input); lvl != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, lvl)
			}
		})
	}
}

func TestSecurityLoggerEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newSecurityLogger(zap.New(core))

	s.AuthnLoginFailure("account-1", "10.0.0.1")
	s.AuthzFailure("account-1", "portal:p1")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["event"] != "authn_login_fail:account-1" {
		t.Errorf("unexpected event %v", ctx["event"])
	}
	if ctx["type"] != "security" {
		t.Errorf("expected security type, got %v", ctx["type"])
	}
	if ctx["ip"] != "10.0.0.1" {
		t.Errorf("expected ip field, got %v", ctx["ip"])
	}
	if entries[1].ContextMap()["event"] != "authz_fail:account-1,portal:p1" {
		t.Errorf("unexpected event %v", entries[1].ContextMap()["event"])
	}
}
