// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	eventSystemStartup       = "sys_startup"
	eventSystemShutdown      = "sys_shutdown"
	eventAuthnLoginSuccess   = "authn_login_success"
	eventAuthnLoginFailure   = "authn_login_fail"
	eventAuthnTokenCreated   = "authn_token_created"
	eventAuthnTokenRevoked   = "authn_token_revoked"
	eventAuthnTokenInvalid   = "authn_token_invalid"
	eventAuthnPasswordChange = "authn_password_change"
	eventAuthzFailure        = "authz_fail"
	eventAuthzAdmin          = "authz_admin"
	eventUserCreated         = "user_created"
	eventUserUpdated         = "user_updated"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) event(level, name, description string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("type", "security"),
		zap.String("event", name),
		zap.String("level", level),
	)

	switch level {
	case "WARN":
		s.l.Warn(description, fields...)
	default:
		s.l.Info(description, fields...)
	}
}

func (s *SecurityLogger) SystemStartup() {
	s.event("WARN", eventSystemStartup, "system started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.event("WARN", eventSystemShutdown, "system shut down")
}

func (s *SecurityLogger) AuthnLoginSuccess(user, ip string) {
	s.event("INFO", fmt.Sprintf("%s:%s", eventAuthnLoginSuccess, user), "user logged in", zap.String("ip", ip))
}

func (s *SecurityLogger) AuthnLoginFailure(user, ip string) {
	s.event("WARN", fmt.Sprintf("%s:%s", eventAuthnLoginFailure, user), "login failed", zap.String("ip", ip))
}

func (s *SecurityLogger) AuthnTokenCreated(user string) {
	s.event("INFO", fmt.Sprintf("%s:%s", eventAuthnTokenCreated, user), "token pair issued")
}

func (s *SecurityLogger) AuthnTokenRevoked(user string) {
	s.event("INFO", fmt.Sprintf("%s:%s", eventAuthnTokenRevoked, user), "refresh tokens revoked")
}

func (s *SecurityLogger) AuthnTokenInvalid(ip string) {
	s.event("WARN", eventAuthnTokenInvalid, "invalid token presented", zap.String("ip", ip))
}

func (s *SecurityLogger) AuthnPasswordChange(user string) {
	s.event("INFO", fmt.Sprintf("%s:%s", eventAuthnPasswordChange, user), "password changed")
}

func (s *SecurityLogger) AuthzFailure(subject, resource string) {
	s.event("WARN", fmt.Sprintf("%s:%s,%s", eventAuthzFailure, subject, resource), "authorization denied")
}

func (s *SecurityLogger) AuthzAdmin(subject, resource string) {
	s.event("WARN", fmt.Sprintf("%s:%s,%s", eventAuthzAdmin, subject, resource), "administrative access granted")
}

func (s *SecurityLogger) UserCreated(actor, user string) {
	s.event("WARN", fmt.Sprintf("%s:%s,%s", eventUserCreated, actor, user), "user created")
}

func (s *SecurityLogger) UserUpdated(actor, user string) {
	s.event("WARN", fmt.Sprintf("%s:%s,%s", eventUserUpdated, actor, user), "user updated")
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l.Named("security")}
}
