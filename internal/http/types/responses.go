// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the body of every failed request.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidRefresh     = "INVALID_REFRESH"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeTenantIDRequired   = "TENANT_ID_REQUIRED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeValidation:         http.StatusBadRequest,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeInvalidRefresh:     http.StatusUnauthorized,
	CodeInvalidToken:       http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeTenantIDRequired:   http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeInternal:           http.StatusInternalServerError,
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// StatusFromCode maps an error code to its HTTP status, defaulting to 500.
func StatusFromCode(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(body)
}

// WriteError writes the error envelope for code with its matching status.
func WriteError(w http.ResponseWriter, code, message string) error {
	return WriteJSON(w, StatusFromCode(code), ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
