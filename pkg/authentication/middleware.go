// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/canonical/portal-auth/internal/authorization"
	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/ratelimit"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

// gRPC methods reachable without a bearer token
var publicGRPCMethods = []string{
	"/grpc.health.v1.Health/",
}

type Middleware struct {
	verifier   TokenVerifierInterface
	authorizer authorization.AuthorizerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate rejects requests without a valid bearer access token and
// attaches the decoded principal to the request context.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			token, found := m.getBearerToken(r.Header)
			if !found {
				m.unauthorizedResponse(w, "missing bearer token")
				return
			}

			principal, err := m.verifier.VerifyToken(ctx, token)
			if err != nil {
				m.logger.Debugf("JWT verification failed: %v", err)
				m.logger.Security().AuthnTokenInvalid(ratelimit.ClientIP(r))
				m.recordOutcome("authenticate", "unauthorized")
				m.unauthorizedResponse(w, "invalid token")
				return
			}

			ctx = WithPrincipal(ctx, *principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers ranked below min.
func (m *Middleware) RequireRole(min types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := PrincipalFromContext(ctx)
			if !ok {
				m.unauthorizedResponse(w, "missing bearer token")
				return
			}

			if err := m.authorizer.RequireRole(ctx, principal, min); err != nil {
				m.authorizationError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePortalAdmin runs the portal admin gate against the portal named by
// the X-Portal-ID header, or the caller's home portal, and stores the
// resulting portal for the handlers.
func (m *Middleware) RequirePortalAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := PrincipalFromContext(ctx)
			if !ok {
				m.unauthorizedResponse(w, "missing bearer token")
				return
			}

			portalID, err := m.authorizer.AuthorizePortalAdmin(ctx, principal, identity.RequestedPortal(ctx))
			if err != nil {
				m.authorizationError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithPortal(ctx, portalID)))
		})
	}
}

// GRPCInterceptor is a unary interceptor for gRPC authentication
func (m *Middleware) GRPCInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	for _, prefix := range publicGRPCMethods {
		if strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
	}

	ctx, span := m.tracer.Start(ctx, "authentication.Middleware.GRPCInterceptor")
	defer span.End()

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, httpTypes.GRPCError(httpTypes.CodeUnauthorized, "metadata is not provided")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, httpTypes.GRPCError(httpTypes.CodeUnauthorized, "authorization token is not provided")
	}

	authHeader := values[0]
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, httpTypes.GRPCError(httpTypes.CodeUnauthorized, "authorization token is not a bearer token")
	}

	principal, err := m.verifier.VerifyToken(ctx, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.logger.Debugf("gRPC JWT verification failed: %v", err)
		m.recordOutcome("authenticate", "unauthorized")
		return nil, httpTypes.GRPCError(httpTypes.CodeUnauthorized, "invalid token")
	}

	return handler(WithPrincipal(ctx, *principal), req)
}

func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if bearer == "" {
		return "", false
	}

	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(bearer, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
	return token, token != ""
}

func (m *Middleware) authorizationError(w http.ResponseWriter, err error) {
	var writeErr error

	switch {
	case errors.Is(err, authorization.ErrForbidden):
		writeErr = httpTypes.WriteError(w, httpTypes.CodeForbidden, "insufficient permissions")
	case errors.Is(err, authorization.ErrPortalIDRequired):
		writeErr = httpTypes.WriteError(w, httpTypes.CodeTenantIDRequired, "portal id required")
	default:
		m.logger.Errorf("authorization check failed: %v", err)
		writeErr = httpTypes.WriteError(w, httpTypes.CodeInternal, "internal error")
	}

	if writeErr != nil {
		m.logger.Errorf("failed to encode error response: %v", writeErr)
	}
}

func (m *Middleware) unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	if err := httpTypes.WriteError(w, httpTypes.CodeUnauthorized, message); err != nil {
		m.logger.Errorf("failed to encode unauthorized response: %v", err)
	}
}

func (m *Middleware) recordOutcome(event, outcome string) {
	if err := m.monitor.IncAuthEventMetric(map[string]string{"event": event, "outcome": outcome}); err != nil {
		m.logger.Debugf("failed to record auth event: %v", err)
	}
}

func NewMiddleware(verifier TokenVerifierInterface, authorizer authorization.AuthorizerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		verifier:   verifier,
		authorizer: authorizer,
		tracer:     tracer,
		monitor:    monitor,
		logger:     logger,
	}
}
