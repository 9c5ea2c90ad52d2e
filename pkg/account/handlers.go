// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

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
	mux.Route("/api/v0/accounts", func(r chi.Router) {
		r.Use(a.auth.Authenticate())
		r.Get("/me", a.me)
		r.Post("/me/password", a.changePassword)
		r.With(
			a.auth.RequireRole(types.RoleAdmin),
			a.auth.RequirePortalAdmin(),
			a.txMiddle,
		).Post("/", a.create)
	})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())

	acc, err := a.service.GetAccount(r.Context(), principal.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		a.writeError(w, httpTypes.CodeNotFound, "account not found")
		return
	}
	if err != nil {
		a.internalError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, acc)
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())

	var req ChangePasswordRequest
	if !a.decode(w, r, &req) {
		return
	}

	err := a.service.ChangePassword(r.Context(), principal, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrInvalidPassword):
		a.writeError(w, httpTypes.CodeInvalidCredentials, "invalid credentials")
	case errors.Is(err, storage.ErrNotFound):
		a.writeError(w, httpTypes.CodeNotFound, "account not found")
	case err != nil:
		a.internalError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())
	portalID, _ := identity.Portal(r.Context())

	var req CreateAccountRequest
	if !a.decode(w, r, &req) {
		return
	}

	acc, err := a.service.CreateAccount(r.Context(), principal, portalID, &req)
	switch {
	case errors.Is(err, authorization.ErrForbidden):
		a.writeError(w, httpTypes.CodeForbidden, "insufficient permissions for the requested role")
	case errors.Is(err, storage.ErrDuplicateKey):
		a.writeError(w, httpTypes.CodeConflict, "account already exists")
	case errors.Is(err, storage.ErrForeignKeyViolation):
		a.writeError(w, httpTypes.CodeNotFound, "portal not found")
	case err != nil:
		a.internalError(w, err)
	default:
		a.writeJSON(w, http.StatusCreated, acc)
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

func (a *API) internalError(w http.ResponseWriter, err error) {
	a.logger.Errorf("account request failed: %v", err)
	a.writeError(w, httpTypes.CodeInternal, "internal error")
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
		validate: authentication.NewValidator(),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
