// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/authentication"
)

var testPrincipal = types.Principal{AccountID: "acc-1", Role: types.RoleEditor, PortalID: "portal-a"}

func fakeAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(authentication.WithPrincipal(r.Context(), testPrincipal)))
	})
}

func passthrough(next http.Handler) http.Handler { return next }

func TestAPI_Endpoints(t *testing.T) {
	pair := &TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: TokenTypeBearer, ExpiresIn: 900}

	tests := []struct {
		name             string
		path             string
		body             string
		exposeResetToken bool
		setupMocks       func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus   int
		expectedCode     string
		validate         func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "login success",
			path: "/api/v0/auth/login",
			body: `{"identifier":"admin@example.com","password":"correct"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().Login(gomock.Any(), "admin@example.com", "correct", "192.0.2.1").Return(pair, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got TokenPair
				if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
					t.Fatal(err)
				}
				if got != *pair {
					t.Errorf("expected %+v, got %+v", *pair, got)
				}
			},
		},
		{
			name: "login invalid credentials",
			path: "/api/v0/auth/login",
			body: `{"identifier":"admin@example.com","password":"wrong"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   httpTypes.CodeInvalidCredentials,
		},
		{
			name: "login missing password",
			path: "/api/v0/auth/login",
			body: `{"identifier":"admin@example.com"}`,
			setupMocks: func(_ *MockServiceInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name: "login internal failure",
			path: "/api/v0/auth/login",
			body: `{"identifier":"admin@example.com","password":"correct"}`,
			setupMocks: func(s *MockServiceInterface, l *MockLoggerInterface) {
				s.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
				l.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   httpTypes.CodeInternal,
		},
		{
			name: "refresh success",
			path: "/api/v0/auth/refresh",
			body: `{"refreshToken":"r0"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().Refresh(gomock.Any(), "r0").Return(pair, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "refresh replay",
			path: "/api/v0/auth/refresh",
			body: `{"refreshToken":"r0"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().Refresh(gomock.Any(), "r0").Return(nil, ErrInvalidRefreshToken)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   httpTypes.CodeInvalidRefresh,
		},
		{
			name: "logout",
			path: "/api/v0/auth/logout",
			body: `{"refreshToken":"r0"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().Logout(gomock.Any(), testPrincipal, "r0").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "logout failure is still reported as success",
			path: "/api/v0/auth/logout",
			body: `{"refreshToken":"r0"}`,
			setupMocks: func(s *MockServiceInterface, l *MockLoggerInterface) {
				s.EXPECT().Logout(gomock.Any(), testPrincipal, "r0").Return(errors.New("db down"))
				l.EXPECT().Errorf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "logout without body",
			path:           "/api/v0/auth/logout",
			body:           ``,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "logout everywhere",
			path: "/api/v0/auth/logout-all",
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().LogoutAll(gomock.Any(), testPrincipal).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "forgot password hides the token in production",
			path: "/api/v0/auth/forgot-password",
			body: `{"email":"admin@example.com"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ForgotPassword(gomock.Any(), "admin@example.com").Return("raw-reset", nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got OKResponse
				_ = json.NewDecoder(rr.Body).Decode(&got)
				if !got.OK || got.ResetToken != "" {
					t.Errorf("unexpected body %+v", got)
				}
			},
		},
		{
			name:             "forgot password echoes the token outside production",
			path:             "/api/v0/auth/forgot-password",
			body:             `{"email":"admin@example.com"}`,
			exposeResetToken: true,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ForgotPassword(gomock.Any(), "admin@example.com").Return("raw-reset", nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var got OKResponse
				_ = json.NewDecoder(rr.Body).Decode(&got)
				if got.ResetToken != "raw-reset" {
					t.Errorf("expected reset token echoed, got %+v", got)
				}
			},
		},
		{
			name: "forgot password for unknown email",
			path: "/api/v0/auth/forgot-password",
			body: `{"email":"nobody@example.com"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ForgotPassword(gomock.Any(), "nobody@example.com").Return("", nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, rr *httptest.ResponseRecorder) {
				if rr.Body.String() != "{\"ok\":true}\n" {
					t.Errorf("unexpected body %q", rr.Body.String())
				}
			},
		},
		{
			name: "reset password",
			path: "/api/v0/auth/reset-password",
			body: `{"token":"t","newPassword":"long-enough"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ResetPassword(gomock.Any(), "t", "long-enough").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "reset password longer than 72 bytes",
			path:           "/api/v0/auth/reset-password",
			body:           `{"token":"t","newPassword":"` + strings.Repeat("é", 72) + `"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name: "reset password with a bad token",
			path: "/api/v0/auth/reset-password",
			body: `{"token":"t","newPassword":"long-enough"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ResetPassword(gomock.Any(), "t", "long-enough").Return(ErrInvalidResetToken)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			tt.setupMocks(mockService, mockLogger)

			mux := chi.NewMux()
			NewAPI(mockService, fakeAuthenticate, passthrough, tt.exposeResetToken, mockTracer, mockMonitor, mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			req.RemoteAddr = "192.0.2.1:5000"
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

			if tt.validate != nil {
				tt.validate(t, rr)
			}
		})
	}
}
