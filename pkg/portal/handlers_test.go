// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func passthrough(next http.Handler) http.Handler { return next }

func setupAuthMiddleware(m *MockAuthMiddlewareInterface, principal types.Principal, portalID string) {
	m.EXPECT().Authenticate().Return(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authentication.WithPrincipal(r.Context(), principal)))
		})
	}).AnyTimes()
	m.EXPECT().RequireRole(gomock.Any()).Return(passthrough).AnyTimes()
	m.EXPECT().RequirePortalAdmin().Return(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.WithPortal(r.Context(), portalID)))
		})
	}).AnyTimes()
}

func TestAPI_Endpoints(t *testing.T) {
	tests := []struct {
		name           string
		principal      types.Principal
		portalID       string
		method         string
		path           string
		body           string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:      "list portals",
			principal: portalAdmin,
			method:    http.MethodGet,
			path:      "/api/v0/portals",
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListPortals(gomock.Any(), portalAdmin).Return([]*types.Portal{{ID: "portal-a"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "create portal",
			principal: superAdmin,
			method:    http.MethodPost,
			path:      "/api/v0/portals",
			body:      `{"name":"North"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().CreatePortal(gomock.Any(), superAdmin, "North").Return(&types.Portal{ID: "p-1", Name: "North"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create portal without name",
			principal:      superAdmin,
			method:         http.MethodPost,
			path:           "/api/v0/portals",
			body:           `{}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name:      "list members",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodGet,
			path:      "/api/v0/portals/members",
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListMembers(gomock.Any(), "portal-a").Return([]*types.Membership{{AccountID: "acc-2"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "superadmin without portal header",
			principal:      superAdmin,
			method:         http.MethodGet,
			path:           "/api/v0/portals/members",
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeTenantIDRequired,
		},
		{
			name:      "add member",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodPost,
			path:      "/api/v0/portals/members",
			body:      `{"accountId":"acc-2","role":"PORTAL_EDITOR"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().AddMember(gomock.Any(), portalAdmin, "portal-a", "acc-2", types.PortalRoleEditor).Return(&types.Membership{AccountID: "acc-2"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "add member with unknown role",
			principal:      portalAdmin,
			portalID:       "portal-a",
			method:         http.MethodPost,
			path:           "/api/v0/portals/members",
			body:           `{"accountId":"acc-2","role":"OWNER"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpTypes.CodeValidation,
		},
		{
			name:      "add existing member",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodPost,
			path:      "/api/v0/portals/members",
			body:      `{"accountId":"acc-2","role":"PORTAL_VIEWER"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().AddMember(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("failed: %w", storage.ErrDuplicateKey))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   httpTypes.CodeConflict,
		},
		{
			name:      "add unknown account",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodPost,
			path:      "/api/v0/portals/members",
			body:      `{"accountId":"ghost","role":"PORTAL_VIEWER"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().AddMember(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("failed: %w", storage.ErrForeignKeyViolation))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   httpTypes.CodeNotFound,
		},
		{
			name:      "grant super admin without being one",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodPost,
			path:      "/api/v0/portals/members",
			body:      `{"accountId":"acc-2","role":"SUPER_ADMIN"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().AddMember(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, authorization.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   httpTypes.CodeForbidden,
		},
		{
			name:      "update member",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodPatch,
			path:      "/api/v0/portals/members/acc-2",
			body:      `{"active":false}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().UpdateMember(gomock.Any(), portalAdmin, "portal-a", "acc-2", nil, gomock.Any()).
					DoAndReturn(func(_, _, _, _, _ any, active *bool) (*types.Membership, error) {
						if active == nil || *active {
							t.Errorf("expected active=false to be forwarded")
						}
						return &types.Membership{AccountID: "acc-2"}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "update missing member",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodPatch,
			path:      "/api/v0/portals/members/ghost",
			body:      `{"role":"PORTAL_ADMIN"}`,
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().UpdateMember(gomock.Any(), gomock.Any(), gomock.Any(), "ghost", gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   httpTypes.CodeNotFound,
		},
		{
			name:      "remove member",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodDelete,
			path:      "/api/v0/portals/members/acc-2",
			setupMocks: func(s *MockServiceInterface, _ *MockLoggerInterface) {
				s.EXPECT().RemoveMember(gomock.Any(), portalAdmin, "portal-a", "acc-2").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:      "remove member store failure",
			principal: portalAdmin,
			portalID:  "portal-a",
			method:    http.MethodDelete,
			path:      "/api/v0/portals/members/acc-2",
			setupMocks: func(s *MockServiceInterface, l *MockLoggerInterface) {
				s.EXPECT().RemoveMember(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("boom"))
				l.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   httpTypes.CodeInternal,
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

			setupAuthMiddleware(mockAuth, tt.principal, tt.portalID)
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
		})
	}
}
