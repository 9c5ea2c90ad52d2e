// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package portal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/portal-auth/internal/authorization"
	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/authentication"
)

type API struct {
	service  ServiceInterface
	auth     AuthMiddlewareInterface
	txMiddle func(http.Handler) http.Handler
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Route("/api/v0/portals", func(r chi.Router) {
		r.Use(a.auth.Authenticate())
		r.Get("/", a.listPortals)
		r.With(a.auth.RequireRole(types.RoleSuperAdmin), a.txMiddle).Post("/", a.createPortal)

		r.Route("/members", func(r chi.Router) {
			r.Use(a.auth.RequireRole(types.RoleAdmin), a.auth.RequirePortalAdmin(), a.txMiddle)
			r.Get("/", a.listMembers)
			r.Post("/", a.addMember)
			r.Patch("/{accountID}", a.updateMember)
			r.Delete("/{accountID}", a.removeMember)
		})
	})
}

func (a *API) listPortals(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())

	portals, err := a.service.ListPortals(r.Context(), principal)
	if err != nil {
		a.handleError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, ListPortalsResponse{Portals: portals})
}

func (a *API) createPortal(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())

	var req CreatePortalRequest
	if !a.decode(w, r, &req) {
		return
	}

	p, err := a.service.CreatePortal(r.Context(), principal, req.Name)
	if err != nil {
		a.handleError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, p)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	portalID, ok := a.effectivePortal(w, r)
	if !ok {
		return
	}

	members, err := a.service.ListMembers(r.Context(), portalID)
	if err != nil {
		a.handleError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, ListMembersResponse{Members: members})
}

func (a *API) addMember(w http.ResponseWriter, r *http.Request) {
	portalID, ok := a.effectivePortal(w, r)
	if !ok {
		return
	}
	principal, _ := authentication.PrincipalFromContext(r.Context())

	var req AddMemberRequest
	if !a.decode(w, r, &req) {
		return
	}

	m, err := a.service.AddMember(r.Context(), principal, portalID, req.AccountID, types.PortalRole(req.Role))
	if err != nil {
		a.handleError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, m)
}

func (a *API) updateMember(w http.ResponseWriter, r *http.Request) {
	portalID, ok := a.effectivePortal(w, r)
	if !ok {
		return
	}
	principal, _ := authentication.PrincipalFromContext(r.Context())

	var req UpdateMemberRequest
	if !a.decode(w, r, &req) {
		return
	}

	var role *types.PortalRole
	if req.Role != nil {
		pr := types.PortalRole(*req.Role)
		role = &pr
	}

	m, err := a.service.UpdateMember(r.Context(), principal, portalID, chi.URLParam(r, "accountID"), role, req.Active)
	if err != nil {
		a.handleError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, m)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	portalID, ok := a.effectivePortal(w, r)
	if !ok {
		return
	}
	principal, _ := authentication.PrincipalFromContext(r.Context())

	if err := a.service.RemoveMember(r.Context(), principal, portalID, chi.URLParam(r, "accountID")); err != nil {
		a.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// effectivePortal returns the portal resolved by the portal admin gate. A
// superadmin calling without X-Portal-ID has none.
func (a *API) effectivePortal(w http.ResponseWriter, r *http.Request) (string, bool) {
	portalID, _ := identity.Portal(r.Context())
	if portalID == "" {
		a.writeError(w, httpTypes.CodeTenantIDRequired, "portal id required")
		return "", false
	}

	return portalID, true
}

func (a *API) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authorization.ErrForbidden):
		a.writeError(w, httpTypes.CodeForbidden, "insufficient permissions")
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrForeignKeyViolation):
		a.writeError(w, httpTypes.CodeNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicateKey):
		a.writeError(w, httpTypes.CodeConflict, "already exists")
	default:
		a.logger.Errorf("portal request failed: %v", err)
		a.writeError(w, httpTypes.CodeInternal, "internal error")
	}
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.writeError(w, httpTypes.CodeValidation, "invalid request body")
		return false
	}

	if err := a.validate.Struct(v); err != nil {
		a.writeError(w, httpTypes.CodeValidation, err.Error())
		return false
	}

	return true
}

func (a *API) writeError(w http.ResponseWriter, code, message string) {
	if err := httpTypes.WriteError(w, code, message); err != nil {
		a.logger.Errorf("failed to encode error response: %v", err)
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	if err := httpTypes.WriteJSON(w, status, body); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewAPI(
	service ServiceInterface,
	auth AuthMiddlewareInterface,
	txMiddleware func(http.Handler) http.Handler,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service:  service,
		auth:     auth,
		txMiddle: txMiddleware,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
