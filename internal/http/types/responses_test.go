// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		code           string
		expectedStatus int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeInvalidRefresh, http.StatusUnauthorized},
		{CodeInvalidToken, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeTenantIDRequired, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, test.code, "message"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if w.Code != test.expectedStatus {
				t.Errorf("expected status %d, got %d", test.expectedStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected json content type, got %q", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error.Code != test.code || body.Error.Message != "message" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestWriteJSONNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteJSON(w, http.StatusNoContent, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("expected an empty 204, got %d %q", w.Code, w.Body.String())
	}
}
