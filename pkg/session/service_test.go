// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package session -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package session -destination ./mock_authentication.go -source=../authentication/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package session -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package session -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package session -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testConfig = Config{RefreshTTL: 7 * 24 * time.Hour, ResetTTL: time.Hour}

type serviceMocks struct {
	storage  *MockStorageInterface
	tx       *MockTransactorInterface
	issuer   *MockTokenIssuerInterface
	hasher   *MockPasswordHasherInterface
	notifier *MockNotifierInterface
	tracer   *MockTracingInterface
	monitor  *MockMonitorInterface
	logger   *MockLoggerInterface
	security *MockSecurityLoggerInterface
}

func newServiceMocks(ctrl *gomock.Controller) *serviceMocks {
	m := &serviceMocks{
		storage:  NewMockStorageInterface(ctrl),
		tx:       NewMockTransactorInterface(ctrl),
		issuer:   NewMockTokenIssuerInterface(ctrl),
		hasher:   NewMockPasswordHasherInterface(ctrl),
		notifier: NewMockNotifierInterface(ctrl),
		tracer:   NewMockTracingInterface(ctrl),
		monitor:  NewMockMonitorInterface(ctrl),
		logger:   NewMockLoggerInterface(ctrl),
		security: NewMockSecurityLoggerInterface(ctrl),
	}

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	m.monitor.EXPECT().IncAuthEventMetric(gomock.Any()).Return(nil).AnyTimes()
	m.logger.EXPECT().Security().Return(m.security).AnyTimes()
	m.logger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	m.tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) },
	).AnyTimes()

	return m
}

func (m *serviceMocks) service() *Service {
	s := NewService(m.storage, m.tx, m.issuer, m.hasher, m.notifier, testConfig, m.tracer, m.monitor, m.logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func activeAccount() *types.Account {
	return &types.Account{
		ID:           "acc-1",
		Email:        "admin@example.com",
		Username:     "admin",
		PasswordHash: "$2a$12$hash",
		Role:         types.RoleAdmin,
		PortalID:     "portal-a",
		Active:       true,
	}
}

func TestService_Login(t *testing.T) {
	principal := types.Principal{AccountID: "acc-1", Role: types.RoleAdmin, PortalID: "portal-a"}

	tests := []struct {
		name        string
		setupMocks  func(*serviceMocks, *types.RefreshToken)
		expectedErr error
	}{
		{
			name: "valid credentials",
			setupMocks: func(m *serviceMocks, stored *types.RefreshToken) {
				m.storage.EXPECT().GetAccountByIdentifier(gomock.Any(), "admin@example.com").Return(activeAccount(), nil)
				m.hasher.EXPECT().Compare("$2a$12$hash", "correct").Return(true)
				m.storage.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, rt *types.RefreshToken) error {
						*stored = *rt
						return nil
					},
				)
				m.issuer.EXPECT().IssueAccessToken(gomock.Any(), principal).Return("access-token", fixedNow.Add(15*time.Minute), nil)
				m.security.EXPECT().AuthnTokenCreated("acc-1")
				m.security.EXPECT().AuthnLoginSuccess("acc-1", "192.0.2.1")
			},
		},
		{
			name: "unknown account still compares a hash",
			setupMocks: func(m *serviceMocks, _ *types.RefreshToken) {
				m.storage.EXPECT().GetAccountByIdentifier(gomock.Any(), "admin@example.com").Return(nil, storage.ErrNotFound)
				m.hasher.EXPECT().Compare("", "correct").Return(false)
				m.security.EXPECT().AuthnLoginFailure("admin@example.com", "192.0.2.1")
			},
			expectedErr: ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setupMocks: func(m *serviceMocks, _ *types.RefreshToken) {
				m.storage.EXPECT().GetAccountByIdentifier(gomock.Any(), "admin@example.com").Return(activeAccount(), nil)
				m.hasher.EXPECT().Compare("$2a$12$hash", "correct").Return(false)
				m.security.EXPECT().AuthnLoginFailure("admin@example.com", "192.0.2.1")
			},
			expectedErr: ErrInvalidCredentials,
		},
		{
			name: "deactivated account",
			setupMocks: func(m *serviceMocks, _ *types.RefreshToken) {
				a := activeAccount()
				a.Active = false
				m.storage.EXPECT().GetAccountByIdentifier(gomock.Any(), "admin@example.com").Return(a, nil)
				m.hasher.EXPECT().Compare("$2a$12$hash", "correct").Return(true)
				m.security.EXPECT().AuthnLoginFailure("admin@example.com", "192.0.2.1")
			},
			expectedErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newServiceMocks(ctrl)
			stored := new(types.RefreshToken)
			tt.setupMocks(m, stored)

			pair, err := m.service().Login(context.Background(), "admin@example.com", "correct", "192.0.2.1")

			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
			if tt.expectedErr != nil {
				if pair != nil {
					t.Errorf("expected no token pair on failure")
				}
				return
			}

			if pair.AccessToken != "access-token" || pair.TokenType != "Bearer" || pair.ExpiresIn != 900 {
				t.Errorf("unexpected pair %+v", pair)
			}
			if len(pair.RefreshToken) < 43 {
				t.Errorf("refresh token too short: %q", pair.RefreshToken)
			}
			if stored.TokenHash == pair.RefreshToken || stored.TokenHash != HashToken(pair.RefreshToken) {
				t.Errorf("expected only the hash of the refresh token to be stored")
			}
			if !stored.ExpiresAt.Equal(fixedNow.Add(testConfig.RefreshTTL)) {
				t.Errorf("unexpected refresh expiry %v", stored.ExpiresAt)
			}
		})
	}
}

func TestService_LoginStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	m.storage.EXPECT().GetAccountByIdentifier(gomock.Any(), "admin").Return(nil, errors.New("connection reset"))

	_, err := m.service().Login(context.Background(), "admin", "pw", "192.0.2.1")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected an internal error, got %v", err)
	}
}

func TestService_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(*serviceMocks)
		expectedErr error
		internal    bool
	}{
		{
			name: "rotates the token",
			setupMocks: func(m *serviceMocks) {
				m.storage.EXPECT().ConsumeRefreshToken(gomock.Any(), HashToken("old-token"), fixedNow).Return("acc-1", nil)
				m.storage.EXPECT().GetAccountByID(gomock.Any(), "acc-1").Return(activeAccount(), nil)
				m.storage.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).Return(nil)
				m.issuer.EXPECT().IssueAccessToken(gomock.Any(), gomock.Any()).Return("access-token", fixedNow.Add(15*time.Minute), nil)
				m.security.EXPECT().AuthnTokenCreated("acc-1")
			},
		},
		{
			name: "unknown, expired, revoked or already rotated",
			setupMocks: func(m *serviceMocks) {
				m.storage.EXPECT().ConsumeRefreshToken(gomock.Any(), HashToken("old-token"), fixedNow).Return("", storage.ErrNotFound)
			},
			expectedErr: ErrInvalidRefreshToken,
		},
		{
			name: "account deactivated since login",
			setupMocks: func(m *serviceMocks) {
				a := activeAccount()
				a.Active = false
				m.storage.EXPECT().ConsumeRefreshToken(gomock.Any(), HashToken("old-token"), fixedNow).Return("acc-1", nil)
				m.storage.EXPECT().GetAccountByID(gomock.Any(), "acc-1").Return(a, nil)
			},
			expectedErr: ErrInvalidRefreshToken,
		},
		{
			name: "store failure",
			setupMocks: func(m *serviceMocks) {
				m.storage.EXPECT().ConsumeRefreshToken(gomock.Any(), HashToken("old-token"), fixedNow).Return("", errors.New("timeout"))
			},
			internal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newServiceMocks(ctrl)
			tt.setupMocks(m)

			pair, err := m.service().Refresh(context.Background(), "old-token")

			if tt.internal {
				if err == nil || errors.Is(err, ErrInvalidRefreshToken) {
					t.Fatalf("expected an internal error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
			if tt.expectedErr == nil && (pair.RefreshToken == "" || pair.RefreshToken == "old-token") {
				t.Errorf("expected a new refresh token, got %q", pair.RefreshToken)
			}
		})
	}
}

func TestService_Logout(t *testing.T) {
	principal := types.Principal{AccountID: "acc-1", Role: types.RoleViewer}

	t.Run("known token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.storage.EXPECT().DeleteRefreshToken(gomock.Any(), HashToken("raw"), "acc-1").Return(int64(1), nil)
		m.security.EXPECT().AuthnTokenRevoked("acc-1")

		if err := m.service().Logout(context.Background(), principal, "raw"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown token is not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.storage.EXPECT().DeleteRefreshToken(gomock.Any(), HashToken("raw"), "acc-1").Return(int64(0), nil)

		if err := m.service().Logout(context.Background(), principal, "raw"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestService_LogoutAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	m.storage.EXPECT().RevokeRefreshTokensByAccountID(gomock.Any(), "acc-1").Return(int64(3), nil)
	m.security.EXPECT().AuthnTokenRevoked("acc-1")

	if err := m.service().LogoutAll(context.Background(), types.Principal{AccountID: "acc-1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_ForgotPassword(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.storage.EXPECT().GetAccountByEmail(gomock.Any(), "nobody@example.com").Return(nil, storage.ErrNotFound)

		token, err := m.service().ForgotPassword(context.Background(), "nobody@example.com")
		if err != nil || token != "" {
			t.Errorf("expected no token and no error, got %q %v", token, err)
		}
	})

	t.Run("known email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		var stored types.PasswordResetToken
		var notified string

		m.storage.EXPECT().GetAccountByEmail(gomock.Any(), "admin@example.com").Return(activeAccount(), nil)
		m.storage.EXPECT().DeletePasswordResetTokensByAccountID(gomock.Any(), "acc-1").Return(int64(1), nil)
		m.storage.EXPECT().CreatePasswordResetToken(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rt *types.PasswordResetToken) error {
				stored = *rt
				return nil
			},
		)
		m.notifier.EXPECT().NotifyPasswordReset(gomock.Any(), gomock.Any(), gomock.Any(), fixedNow.Add(time.Hour)).DoAndReturn(
			func(_ context.Context, _ *types.Account, raw string, _ time.Time) error {
				notified = raw
				return errors.New("mailer down")
			},
		)
		m.logger.EXPECT().Errorf(gomock.Any(), gomock.Any())

		token, err := m.service().ForgotPassword(context.Background(), "admin@example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token == "" || token != notified {
			t.Errorf("expected the notified token to be returned")
		}
		if stored.TokenHash != HashToken(token) || stored.AccountID != "acc-1" {
			t.Errorf("unexpected stored reset token %+v", stored)
		}
	})
}

func TestService_ResetPassword(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(*serviceMocks)
		expectedErr error
	}{
		{
			name: "valid token",
			setupMocks: func(m *serviceMocks) {
				m.hasher.EXPECT().Hash("new-password").Return("new-hash", nil)
				m.storage.EXPECT().ConsumePasswordResetToken(gomock.Any(), HashToken("reset"), fixedNow).Return("acc-1", nil)
				m.storage.EXPECT().UpdatePasswordHash(gomock.Any(), "acc-1", "new-hash").Return(nil)
				m.storage.EXPECT().RevokeRefreshTokensByAccountID(gomock.Any(), "acc-1").Return(int64(2), nil)
				m.security.EXPECT().AuthnPasswordChange("acc-1")
			},
		},
		{
			name: "unknown or expired token",
			setupMocks: func(m *serviceMocks) {
				m.hasher.EXPECT().Hash("new-password").Return("new-hash", nil)
				m.storage.EXPECT().ConsumePasswordResetToken(gomock.Any(), HashToken("reset"), fixedNow).Return("", storage.ErrNotFound)
			},
			expectedErr: ErrInvalidResetToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newServiceMocks(ctrl)
			tt.setupMocks(m)

			err := m.service().ResetPassword(context.Background(), "reset", "new-password")
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}
