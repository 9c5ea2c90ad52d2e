// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/version"
)

const readinessTimeout = 2 * time.Second

type Status struct {
	Status    string `json:"status"`
	BuildInfo string `json:"buildInfo"`
}

type Readiness struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/ready", a.ready)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	a.write(w, http.StatusOK, Status{Status: "ok", BuildInfo: version.Version})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	tags := map[string]string{"component": "database"}

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database ping failed: %v", err)
		_ = a.monitor.SetDependencyAvailability(tags, 0)
		a.write(w, http.StatusServiceUnavailable, Readiness{Status: "unavailable", Database: "down"})
		return
	}

	_ = a.monitor.SetDependencyAvailability(tags, 1)
	a.write(w, http.StatusOK, Readiness{Status: "ok", Database: "up"})
}

func (a *API) write(w http.ResponseWriter, status int, body any) {
	if err := httpTypes.WriteJSON(w, status, body); err != nil {
		a.logger.Errorf("failed to encode status response: %v", err)
	}
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
