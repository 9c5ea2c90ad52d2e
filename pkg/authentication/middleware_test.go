// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/canonical/portal-auth/internal/authorization"
	httpTypes "github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_authorization.go -source=../../internal/authorization/interfaces.go

func decodeErrorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body httpTypes.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}

	return body.Error.Code
}

func TestMiddleware_Authenticate(t *testing.T) {
	principal := &types.Principal{AccountID: "acc-1", Role: types.RoleEditor, PortalID: "portal-a"}

	tests := []struct {
		name               string
		authHeader         string
		setupMocks         func(*MockTokenVerifierInterface, *MockSecurityLoggerInterface)
		expectedStatusCode int
		expectedCode       string
	}{
		{
			name:               "Missing token - rejects request",
			authHeader:         "",
			setupMocks:         func(*MockTokenVerifierInterface, *MockSecurityLoggerInterface) {},
			expectedStatusCode: http.StatusUnauthorized,
			expectedCode:       httpTypes.CodeUnauthorized,
		},
		{
			name:               "Invalid token format - rejects request",
			authHeader:         "InvalidToken",
			setupMocks:         func(*MockTokenVerifierInterface, *MockSecurityLoggerInterface) {},
			expectedStatusCode: http.StatusUnauthorized,
			expectedCode:       httpTypes.CodeUnauthorized,
		},
		{
			name:       "Token verification fails - rejects request",
			authHeader: "Bearer invalid-token",
			setupMocks: func(v *MockTokenVerifierInterface, sec *MockSecurityLoggerInterface) {
				v.EXPECT().VerifyToken(gomock.Any(), "invalid-token").Return(nil, fmt.Errorf("%w: expired", ErrUnauthorized))
				sec.EXPECT().AuthnTokenInvalid("192.0.2.1")
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectedCode:       httpTypes.CodeUnauthorized,
		},
		{
			name:       "Valid token",
			authHeader: "Bearer valid-token",
			setupMocks: func(v *MockTokenVerifierInterface, _ *MockSecurityLoggerInterface) {
				v.EXPECT().VerifyToken(gomock.Any(), "valid-token").Return(principal, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)

			ctx := context.Background()
			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.Authenticate").Return(ctx, trace.SpanFromContext(ctx))
			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
			mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
			mockMonitor.EXPECT().IncAuthEventMetric(gomock.Any()).Return(nil).AnyTimes()

			tt.setupMocks(mockVerifier, mockSecurity)

			middleware := NewMiddleware(mockVerifier, mockAuthorizer, mockTracer, mockMonitor, mockLogger)

			var got types.Principal
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate()(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Fatalf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if tt.expectedCode != "" {
				if code := decodeErrorCode(t, rr); code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, code)
				}
				return
			}

			if got != *principal {
				t.Errorf("expected principal %+v, got %+v", *principal, got)
			}
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name               string
		withPrincipal      bool
		authorizerErr      error
		expectedStatusCode int
		expectedCode       string
	}{
		{
			name:               "no principal",
			expectedStatusCode: http.StatusUnauthorized,
			expectedCode:       httpTypes.CodeUnauthorized,
		},
		{
			name:               "rank too low",
			withPrincipal:      true,
			authorizerErr:      authorization.ErrForbidden,
			expectedStatusCode: http.StatusForbidden,
			expectedCode:       httpTypes.CodeForbidden,
		},
		{
			name:               "rank sufficient",
			withPrincipal:      true,
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)

			p := types.Principal{AccountID: "acc-1", Role: types.RoleViewer}
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.withPrincipal {
				req = req.WithContext(WithPrincipal(req.Context(), p))
				mockAuthorizer.EXPECT().RequireRole(gomock.Any(), p, types.RoleAdmin).Return(tt.authorizerErr)
			}

			middleware := NewMiddleware(mockVerifier, mockAuthorizer, mockTracer, mockMonitor, mockLogger)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			middleware.RequireRole(types.RoleAdmin)(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Fatalf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}
			if tt.expectedCode != "" {
				if code := decodeErrorCode(t, rr); code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, code)
				}
			}
		})
	}
}

func TestMiddleware_RequirePortalAdmin(t *testing.T) {
	tests := []struct {
		name               string
		header             string
		authorizerPortal   string
		authorizerErr      error
		expectedStatusCode int
		expectedCode       string
		expectedPortal     string
	}{
		{
			name:               "admitted on the header portal",
			header:             "portal-b",
			authorizerPortal:   "portal-b",
			expectedStatusCode: http.StatusOK,
			expectedPortal:     "portal-b",
		},
		{
			name:               "admitted on the home portal",
			authorizerPortal:   "portal-a",
			expectedStatusCode: http.StatusOK,
			expectedPortal:     "portal-a",
		},
		{
			name:               "forbidden",
			header:             "portal-b",
			authorizerErr:      authorization.ErrForbidden,
			expectedStatusCode: http.StatusForbidden,
			expectedCode:       httpTypes.CodeForbidden,
		},
		{
			name:               "portal required",
			authorizerErr:      authorization.ErrPortalIDRequired,
			expectedStatusCode: http.StatusBadRequest,
			expectedCode:       httpTypes.CodeTenantIDRequired,
		},
		{
			name:               "store failure",
			authorizerErr:      errors.New("db down"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedCode:       httpTypes.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)

			mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

			p := types.Principal{AccountID: "acc-1", Role: types.RoleAdmin, PortalID: "portal-a"}
			mockAuthorizer.EXPECT().AuthorizePortalAdmin(gomock.Any(), p, tt.header).Return(tt.authorizerPortal, tt.authorizerErr)

			ctx := WithPrincipal(context.Background(), p)
			if tt.header != "" {
				ctx = identity.WithRequestedPortal(ctx, tt.header)
			}
			req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)

			var gotPortal string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPortal, _ = identity.Portal(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			NewMiddleware(mockVerifier, mockAuthorizer, mockTracer, mockMonitor, mockLogger).RequirePortalAdmin()(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Fatalf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}
			if tt.expectedCode != "" {
				if code := decodeErrorCode(t, rr); code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, code)
				}
				return
			}
			if gotPortal != tt.expectedPortal {
				t.Errorf("expected portal %q, got %q", tt.expectedPortal, gotPortal)
			}
		})
	}
}

func TestMiddleware_GRPCInterceptor(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		md           metadata.MD
		setupMocks   func(*MockTokenVerifierInterface, *MockTracingInterface)
		expectedCode codes.Code
	}{
		{
			name:         "health is public",
			method:       "/grpc.health.v1.Health/Check",
			setupMocks:   func(*MockTokenVerifierInterface, *MockTracingInterface) {},
			expectedCode: codes.OK,
		},
		{
			name:   "missing metadata",
			method: "/portal.v0.Accounts/Me",
			setupMocks: func(_ *MockTokenVerifierInterface, tr *MockTracingInterface) {
				tr.EXPECT().Start(gomock.Any(), "authentication.Middleware.GRPCInterceptor").Return(context.Background(), trace.SpanFromContext(context.Background()))
			},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:   "invalid token",
			method: "/portal.v0.Accounts/Me",
			md:     metadata.Pairs("authorization", "Bearer bad"),
			setupMocks: func(v *MockTokenVerifierInterface, tr *MockTracingInterface) {
				ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer bad"))
				tr.EXPECT().Start(gomock.Any(), "authentication.Middleware.GRPCInterceptor").Return(ctx, trace.SpanFromContext(ctx))
				v.EXPECT().VerifyToken(gomock.Any(), "bad").Return(nil, ErrUnauthorized)
			},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:   "valid token",
			method: "/portal.v0.Accounts/Me",
			md:     metadata.Pairs("authorization", "Bearer good"),
			setupMocks: func(v *MockTokenVerifierInterface, tr *MockTracingInterface) {
				ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer good"))
				tr.EXPECT().Start(gomock.Any(), "authentication.Middleware.GRPCInterceptor").Return(ctx, trace.SpanFromContext(ctx))
				v.EXPECT().VerifyToken(gomock.Any(), "good").Return(&types.Principal{AccountID: "acc-1", Role: types.RoleViewer}, nil)
			},
			expectedCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)

			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
			mockMonitor.EXPECT().IncAuthEventMetric(gomock.Any()).Return(nil).AnyTimes()
			tt.setupMocks(mockVerifier, mockTracer)

			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return "ok", nil
			}

			middleware := NewMiddleware(mockVerifier, mockAuthorizer, mockTracer, mockMonitor, mockLogger)
			_, err := middleware.GRPCInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)

			if got := status.Code(err); got != tt.expectedCode {
				t.Errorf("expected code %v, got %v (%v)", tt.expectedCode, got, err)
			}
		})
	}
}

func TestMiddleware_GetBearerToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		expectedToken string
		expectedFound bool
	}{
		{
			name:          "No Authorization header",
			authHeader:    "",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Bearer token",
			authHeader:    "Bearer my-token-123",
			expectedToken: "my-token-123",
			expectedFound: true,
		},
		{
			name:          "Empty bearer token",
			authHeader:    "Bearer  ",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Raw token without Bearer prefix",
			authHeader:    "my-token-123",
			expectedToken: "",
			expectedFound: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockAuthorizer := NewMockAuthorizerInterface(ctrl)

			middleware := NewMiddleware(mockVerifier, mockAuthorizer, mockTracer, mockMonitor, mockLogger)

			headers := http.Header{}
			if test.authHeader != "" {
				headers.Set("Authorization", test.authHeader)
			}

			token, found := middleware.getBearerToken(headers)

			if token != test.expectedToken {
				t.Errorf("expected token %q, got %q", test.expectedToken, token)
			}
			if found != test.expectedFound {
				t.Errorf("expected found %v, got %v", test.expectedFound, found)
			}
		})
	}
}
