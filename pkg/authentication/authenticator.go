// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"crypto/rand"
	"fmt"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
)

// NewJWTAuthenticator builds the access token issuer and verifier sharing
// one signing configuration.
func NewJWTAuthenticator(
	config Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (*JWTIssuer, *JWTVerifier, error) {
	if config.Issuer == "" {
		return nil, nil, fmt.Errorf("issuer is required for JWT authentication")
	}

	if config.AccessTTL <= 0 {
		return nil, nil, fmt.Errorf("access token ttl must be positive")
	}

	if len(config.Secret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		config.Secret = secret
		logger.Warn("JWT_SECRET is empty, using an ephemeral signing key; tokens will not survive a restart")
	}

	logger.Infof("JWT authentication is enabled for issuer %s", config.Issuer)

	return NewJWTIssuer(config, tracer, monitor, logger), NewJWTVerifier(config, tracer, monitor, logger), nil
}
