// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

var _ TokenIssuerInterface = (*JWTIssuer)(nil)

type JWTIssuer struct {
	config Config
	now    func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (i *JWTIssuer) IssueAccessToken(ctx context.Context, principal types.Principal) (string, time.Time, error) {
	_, span := i.tracer.Start(ctx, "authentication.JWTIssuer.IssueAccessToken")
	defer span.End()

	now := i.now().UTC()
	expiresAt := now.Add(i.config.AccessTTL)

	claims := Claims{
		Role:     string(principal.Role),
		PortalID: principal.PortalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   principal.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

func NewJWTIssuer(config Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *JWTIssuer {
	return &JWTIssuer{
		config:  config,
		now:     time.Now,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
