// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
)

const (
	// HeaderName is the header used to select the portal a request operates on
	HeaderName = "X-Portal-ID"
)

type Middleware struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// HTTPMiddleware records the portal requested through HeaderName, if any.
// Whether the caller may operate on it is decided later by the portal admin gate.
func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.HTTPMiddleware")
		defer span.End()

		if portalID := strings.TrimSpace(r.Header.Get(HeaderName)); portalID != "" {
			ctx = WithRequestedPortal(ctx, portalID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) GRPCInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, span := m.tracer.Start(ctx, "identity.Middleware.GRPCInterceptor")
	defer span.End()

	// Metadata keys are lowercased
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(strings.ToLower(HeaderName))
		if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			ctx = WithRequestedPortal(ctx, strings.TrimSpace(values[0]))
		}
	}

	return handler(ctx, req)
}

func NewMiddleware(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
