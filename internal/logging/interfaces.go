// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Security() SecurityLoggerInterface
	Sync() error
}

// SecurityLoggerInterface emits security relevant events using the OWASP
// logging vocabulary.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	AuthnLoginSuccess(user, ip string)
	AuthnLoginFailure(user, ip string)
	AuthnTokenCreated(user string)
	AuthnTokenRevoked(user string)
	AuthnTokenInvalid(ip string)
	AuthnPasswordChange(user string)
	AuthzFailure(subject, resource string)
	AuthzAdmin(subject, resource string)
	UserCreated(actor, user string)
	UserUpdated(actor, user string)
}
