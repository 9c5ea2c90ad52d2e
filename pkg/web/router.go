// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"net/netip"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/portal-auth/internal/db"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/ratelimit"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/pkg/account"
	"github.com/canonical/portal-auth/pkg/authentication"
	"github.com/canonical/portal-auth/pkg/metrics"
	"github.com/canonical/portal-auth/pkg/portal"
	"github.com/canonical/portal-auth/pkg/session"
	"github.com/canonical/portal-auth/pkg/status"
)

// Options carries the settings that shape the HTTP surface.
type Options struct {
	CORSAllowedOrigins []string
	ExposeResetToken   bool
	// TrustedProxies are the peers allowed to set the client address
	// through forwarding headers.
	TrustedProxies []netip.Prefix
}

func NewRouter(
	sessionService session.ServiceInterface,
	accountService account.ServiceInterface,
	portalService portal.ServiceInterface,
	authMiddleware *authentication.Middleware,
	identityMiddleware *identity.Middleware,
	limiter *ratelimit.Limiter,
	dbClient db.DBClientInterface,
	opts Options,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middlewareTrustedProxies(opts.TrustedProxies),
		middleware.Recoverer,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(opts.CORSAllowedOrigins),
		identityMiddleware.HTTPMiddleware,
	)

	router.Use(middlewares...)

	txMiddleware := db.TransactionMiddleware(dbClient, logger)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)

	session.NewAPI(
		sessionService,
		authMiddleware.Authenticate(),
		limiter.Middleware,
		opts.ExposeResetToken,
		tracer,
		monitor,
		logger,
	).RegisterEndpoints(router)
	account.NewAPI(accountService, authMiddleware, txMiddleware, tracer, monitor, logger).RegisterEndpoints(router)
	portal.NewAPI(portalService, authMiddleware, txMiddleware, tracer, monitor, logger).RegisterEndpoints(router)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
