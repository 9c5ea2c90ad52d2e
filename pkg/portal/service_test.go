// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package portal

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/portal-auth/internal/authorization"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package portal -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package portal -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package portal -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package portal -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

var (
	superAdmin  = types.Principal{AccountID: "root", Role: types.RoleSuperAdmin}
	portalAdmin = types.Principal{AccountID: "admin-1", Role: types.RoleAdmin, PortalID: "portal-a"}
)

func newTestService(ctrl *gomock.Controller) (*Service, *MockStorageInterface, *MockSecurityLoggerInterface) {
	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()

	return NewService(mockStorage, mockTracer, mockMonitor, mockLogger), mockStorage, mockSecurity
}

func TestService_ListPortals(t *testing.T) {
	tests := []struct {
		name       string
		principal  types.Principal
		setupMocks func(*MockStorageInterface)
		expected   int
	}{
		{
			name:      "superadmin sees every portal",
			principal: superAdmin,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().ListPortals(gomock.Any()).Return([]*types.Portal{{ID: "a"}, {ID: "b"}}, nil)
			},
			expected: 2,
		},
		{
			name:      "other roles see their memberships",
			principal: portalAdmin,
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().ListPortalsByAccountID(gomock.Any(), "admin-1").Return([]*types.Portal{{ID: "portal-a"}}, nil)
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, mockStorage, _ := newTestService(ctrl)
			tt.setupMocks(mockStorage)

			portals, err := svc.ListPortals(context.Background(), tt.principal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(portals) != tt.expected {
				t.Errorf("expected %d portals, got %d", tt.expected, len(portals))
			}
		})
	}
}

func TestService_CreatePortal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStorage, _ := newTestService(ctrl)
	mockStorage.EXPECT().CreatePortal(gomock.Any(), "North").Return(&types.Portal{ID: "p-1", Name: "North"}, nil)

	p, err := svc.CreatePortal(context.Background(), superAdmin, "North")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p-1" {
		t.Errorf("expected portal p-1, got %s", p.ID)
	}
}

func TestService_AddMember(t *testing.T) {
	tests := []struct {
		name        string
		actor       types.Principal
		role        types.PortalRole
		setupMocks  func(*MockStorageInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name:  "portal admin adds an editor",
			actor: portalAdmin,
			role:  types.PortalRoleEditor,
			setupMocks: func(s *MockStorageInterface, sec *MockSecurityLoggerInterface) {
				s.EXPECT().CreateMembership(gomock.Any(), &types.Membership{
					AccountID: "acc-2", PortalID: "portal-a", Role: types.PortalRoleEditor, Active: true,
				}).Return(&types.Membership{AccountID: "acc-2"}, nil)
				sec.EXPECT().UserUpdated("admin-1", "acc-2")
			},
		},
		{
			name:  "portal admin cannot grant super admin",
			actor: portalAdmin,
			role:  types.PortalRoleSuperAdmin,
			setupMocks: func(_ *MockStorageInterface, sec *MockSecurityLoggerInterface) {
				sec.EXPECT().AuthzFailure("admin-1", "portal_role:SUPER_ADMIN")
			},
			expectedErr: authorization.ErrForbidden,
		},
		{
			name:  "superadmin grants super admin",
			actor: superAdmin,
			role:  types.PortalRoleSuperAdmin,
			setupMocks: func(s *MockStorageInterface, sec *MockSecurityLoggerInterface) {
				s.EXPECT().CreateMembership(gomock.Any(), gomock.Any()).Return(&types.Membership{}, nil)
				sec.EXPECT().UserUpdated("root", "acc-2")
			},
		},
		{
			name:  "existing membership",
			actor: portalAdmin,
			role:  types.PortalRoleViewer,
			setupMocks: func(s *MockStorageInterface, _ *MockSecurityLoggerInterface) {
				s.EXPECT().CreateMembership(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			expectedErr: storage.ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, mockStorage, mockSecurity := newTestService(ctrl)
			tt.setupMocks(mockStorage, mockSecurity)

			_, err := svc.AddMember(context.Background(), tt.actor, "portal-a", "acc-2", tt.role)
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestService_UpdateMember(t *testing.T) {
	current := &types.Membership{AccountID: "acc-2", PortalID: "portal-a", Role: types.PortalRoleViewer, Active: true}
	editor := types.PortalRoleEditor
	inactive := false

	tests := []struct {
		name       string
		role       *types.PortalRole
		active     *bool
		wantRole   types.PortalRole
		wantActive bool
	}{
		{name: "role only", role: &editor, wantRole: types.PortalRoleEditor, wantActive: true},
		{name: "active only", active: &inactive, wantRole: types.PortalRoleViewer, wantActive: false},
		{name: "both", role: &editor, active: &inactive, wantRole: types.PortalRoleEditor, wantActive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, mockStorage, mockSecurity := newTestService(ctrl)
			mockStorage.EXPECT().GetMembership(gomock.Any(), "acc-2", "portal-a").Return(current, nil)
			mockStorage.EXPECT().UpdateMembership(gomock.Any(), "acc-2", "portal-a", tt.wantRole, tt.wantActive).Return(&types.Membership{}, nil)
			mockSecurity.EXPECT().UserUpdated("admin-1", "acc-2")

			if _, err := svc.UpdateMember(context.Background(), portalAdmin, "portal-a", "acc-2", tt.role, tt.active); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestService_UpdateMemberNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStorage, _ := newTestService(ctrl)
	mockStorage.EXPECT().GetMembership(gomock.Any(), "ghost", "portal-a").Return(nil, storage.ErrNotFound)

	editor := types.PortalRoleEditor
	_, err := svc.UpdateMember(context.Background(), portalAdmin, "portal-a", "ghost", &editor, nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_RemoveMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockStorage, mockSecurity := newTestService(ctrl)
	mockStorage.EXPECT().GetMembership(gomock.Any(), "acc-2", "portal-a").
		Return(&types.Membership{Role: types.PortalRoleAdmin, Active: true}, nil)
	mockStorage.EXPECT().UpdateMembership(gomock.Any(), "acc-2", "portal-a", types.PortalRoleAdmin, false).Return(&types.Membership{}, nil)
	mockSecurity.EXPECT().UserUpdated("admin-1", "acc-2")

	if err := svc.RemoveMember(context.Background(), portalAdmin, "portal-a", "acc-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
