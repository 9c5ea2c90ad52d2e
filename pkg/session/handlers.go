// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/ratelimit"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/pkg/authentication"
)

type API struct {
	service          ServiceInterface
	authenticate     func(http.Handler) http.Handler
	rateLimit        func(http.Handler) http.Handler
	exposeResetToken bool
	validate         *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Route("/api/v0/auth", func(r chi.Router) {
		r.With(a.rateLimit).Post("/login", a.login)
		r.Post("/refresh", a.refresh)
		r.With(a.authenticate).Post("/logout", a.logout)
		r.With(a.authenticate).Post("/logout-all", a.logoutAll)
		r.With(a.rateLimit).Post("/forgot-password", a.forgotPassword)
		r.With(a.rateLimit).Post("/reset-password", a.resetPassword)
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !a.decode(w, r, &req) {
		return
	}

	pair, err := a.service.Login(r.Context(), req.Identifier, req.Password, ratelimit.ClientIP(r))
	if errors.Is(err, ErrInvalidCredentials) {
		a.writeError(w, httpTypes.CodeInvalidCredentials, "invalid credentials")
		return
	}
	if err != nil {
		a.internalError(w, "login", err)
		return
	}

	a.writeJSON(w, http.StatusOK, pair)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !a.decode(w, r, &req) {
		return
	}

	pair, err := a.service.Refresh(r.Context(), req.RefreshToken)
	if errors.Is(err, ErrInvalidRefreshToken) {
		a.writeError(w, httpTypes.CodeInvalidRefresh, "invalid refresh token")
		return
	}
	if err != nil {
		a.internalError(w, "refresh", err)
		return
	}

	a.writeJSON(w, http.StatusOK, pair)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())

	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if err := a.service.Logout(r.Context(), principal, req.RefreshToken); err != nil {
			a.logger.Errorf("logout failed for %s: %v", principal.AccountID, err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) logoutAll(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.PrincipalFromContext(r.Context())

	if err := a.service.LogoutAll(r.Context(), principal); err != nil {
		a.logger.Errorf("logout-all failed for %s: %v", principal.AccountID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}

	resp := OKResponse{OK: true}

	token, err := a.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		a.logger.Errorf("forgot-password failed: %v", err)
	}

	if a.exposeResetToken {
		resp.ResetToken = token
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}

	err := a.service.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if errors.Is(err, ErrInvalidResetToken) {
		a.writeError(w, httpTypes.CodeInvalidToken, "invalid or expired token")
		return
	}
	if err != nil {
		a.internalError(w, "reset-password", err)
		return
	}

	a.writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.writeError(w, httpTypes.CodeValidation, "invalid request body")
		return false
	}

	if err := a.validate.Struct(v); err != nil {
		a.logger.Debugf("request validation failed: %v", err)
		a.writeError(w, httpTypes.CodeValidation, "invalid request body")
		return false
	}

	return true
}

func (a *API) internalError(w http.ResponseWriter, op string, err error) {
	a.logger.Errorf("%s failed: %v", op, err)
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
	authenticate func(http.Handler) http.Handler,
	rateLimit func(http.Handler) http.Handler,
	exposeResetToken bool,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service:          service,
		authenticate:     authenticate,
		rateLimit:        rateLimit,
		exposeResetToken: exposeResetToken,
		validate:         authentication.NewValidator(),
		tracer:           tracer,
		monitor:          monitor,
		logger:           logger,
	}
}
