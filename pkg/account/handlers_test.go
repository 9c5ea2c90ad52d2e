// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/portal-auth/internal/authorization"
	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/authentication"
)

var testPrincipal = types.Principal{AccountID: "admin-1", Role: types.RoleAdmin, PortalID: "portal-a"}

func passthrough(next http.Handler) http.Handler { return next }

func setupAuthMiddleware(m *MockAuthMiddlewareInterface) {
	m.EXPECT().Authenticate().Return(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authentication.WithPrincipal(r.Context(), testPrincipal)))
		})
	}).AnyTimes()
	m.EXPECT().RequireRole(types.RoleAdmin).Return(passthrough).AnyTimes()
	m.EXPECT().RequirePortalAdmin().Return(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.WithPortal(r.Context(), "portal-a")))
		})
	}).AnyTimes()
}

func TestAPI_Endpoints(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "me",
			method: http.MethodGet,
			path:   "/api/v0/accounts/me",
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().GetAccount(gomock.Any(), "admin-1").Return(&types.Account{ID: "admin-1", PasswordHash: "secret"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "change password",
			method: http.MethodPost,
			path:   "/api/v0/accounts/me/password",
			body:   `{"currentPassword":"old","newPassword":"new-password"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ChangePassword(gomock.Any(), testPrincipal, "old", "new-password").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "change password with wrong current password",
			method: http.MethodPost,
			path:   "/api/v0/accounts/me/password",
			body:   `{"currentPassword":"bad","newPassword":"new-password"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ChangePassword(gomock.Any(), testPrincipal, "bad", "new-password").Return(ErrInvalidPassword)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   httpTypes.CodeInvalidCredentials,
		},
		{
			name:   "create account in the effective portal",
			method: http.MethodPost,
			path:   "/api/v0/accounts",
			body:   `{"email":"new@example.com","username":"new","password":"password1"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().CreateAccount(gomock.Any(), testPrincipal, "portal-a", gomock.Any()).Return(&types.Account{ID: "acc-9"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create account with invalid email",
			method:         http.MethodPost,
			path:           "/api/v0/accounts",
			body:           `{"email":"nope","username":"new","password":"password1"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name:           "create account with a password over 72 bytes",
			method:         http.MethodPost,
			path:           "/api/v0/accounts",
			body:           `{"email":"new@example.com","username":"new","password":"` + strings.Repeat("é", 72) + `"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name:           "change password to one over 72 bytes",
			method:         http.MethodPost,
			path:           "/api/v0/accounts/me/password",
			body:           `{"currentPassword":"old","newPassword":"` + strings.Repeat("é", 72) + `"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name:   "create privileged account without superadmin",
			method: http.MethodPost,
			path:   "/api/v0/accounts",
			body:   `{"email":"new@example.com","username":"new","password":"password1","role":"admin"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().CreateAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, authorization.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   httpTypes.CodeForbidden,
		},
		{
			name:   "create duplicate account",
			method: http.MethodPost,
			path:   "/api/v0/accounts",
			body:   `{"email":"new@example.com","username":"new","password":"password1"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().CreateAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("failed: %w", storage.ErrDuplicateKey))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   httpTypes.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockAuth := NewMockAuthMiddlewareInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			setupAuthMiddleware(mockAuth)
			tt.setupMocks(mockService, mockLogger)

			mux := chi.NewMux()
			NewAPI(mockService, mockAuth, passthrough, mockTracer, mockMonitor, mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			if tt.expectedCode != "" {
				var body httpTypes.ErrorResponse
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode error: %v", err)
				}
				if body.Error.Code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, body.Error.Code)
				}
			}

			if bytes.Contains(rr.Body.Bytes(), []byte("secret")) {
				t.Errorf("password hash leaked in response")
			}
		})
	}
}
