// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

// ErrUnauthorized covers every access token rejection: missing, malformed,
// bad signature, wrong issuer or expired.
var ErrUnauthorized = errors.New("unauthorized")

var _ TokenVerifierInterface = (*JWTVerifier)(nil)

type JWTVerifier struct {
	config Config
	parser *jwt.Parser
	now    func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (*types.Principal, error) {
	_, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	claims := new(Claims)
	token, err := v.parser.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return v.config.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if !token.Valid {
		return nil, ErrUnauthorized
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject missing", ErrUnauthorized)
	}

	if !types.Role(claims.Role).Valid() {
		v.logger.Debugf("access token for %s carries unknown role %q", claims.Subject, claims.Role)
		return nil, fmt.Errorf("%w: unknown role", ErrUnauthorized)
	}

	p := claims.Principal()
	return &p, nil
}

func NewJWTVerifier(config Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *JWTVerifier {
	v := &JWTVerifier{
		config:  config,
		now:     time.Now,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}

	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)

	return v
}
