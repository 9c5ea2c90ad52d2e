// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/portal-auth/internal/types"
)

type jwtFixture struct {
	issuer   *JWTIssuer
	verifier *JWTVerifier
}

func newJWTFixture(t *testing.T, ctrl *gomock.Controller, config Config) jwtFixture {
	t.Helper()

	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()

	return jwtFixture{
		issuer:   NewJWTIssuer(config, mockTracer, mockMonitor, mockLogger),
		verifier: NewJWTVerifier(config, mockTracer, mockMonitor, mockLogger),
	}
}

func TestJWT_RoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newJWTFixture(t, ctrl, NewConfig("secret", "portal-auth", 15*time.Minute))

	for _, p := range []types.Principal{
		{AccountID: "acc-1", Role: types.RoleViewer, PortalID: "portal-a"},
		{AccountID: "acc-2", Role: types.RoleSuperAdmin},
	} {
		token, expiresAt, err := f.issuer.IssueAccessToken(context.Background(), p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Until(expiresAt) > 15*time.Minute || time.Until(expiresAt) < 14*time.Minute {
			t.Errorf("unexpected expiry %v", expiresAt)
		}

		got, err := f.verifier.VerifyToken(context.Background(), token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *got != p {
			t.Errorf("expected %+v, got %+v", p, *got)
		}
	}
}

func TestJWT_UniqueTokenIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newJWTFixture(t, ctrl, NewConfig("secret", "portal-auth", time.Minute))
	p := types.Principal{AccountID: "acc-1", Role: types.RoleViewer}

	a, _, _ := f.issuer.IssueAccessToken(context.Background(), p)
	b, _, _ := f.issuer.IssueAccessToken(context.Background(), p)
	if a == b {
		t.Errorf("expected distinct tokens for the same principal")
	}
}

func TestJWT_Rejections(t *testing.T) {
	p := types.Principal{AccountID: "acc-1", Role: types.RoleAdmin, PortalID: "portal-a"}

	tests := []struct {
		name  string
		token func(t *testing.T, f jwtFixture) string
	}{
		{
			name: "expired",
			token: func(t *testing.T, f jwtFixture) string {
				f.issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
				token, _, err := f.issuer.IssueAccessToken(context.Background(), p)
				if err != nil {
					t.Fatal(err)
				}
				return token
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T, f jwtFixture) string {
				f.issuer.config.Secret = []byte("other")
				token, _, err := f.issuer.IssueAccessToken(context.Background(), p)
				if err != nil {
					t.Fatal(err)
				}
				return token
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T, f jwtFixture) string {
				f.issuer.config.Issuer = "someone-else"
				token, _, err := f.issuer.IssueAccessToken(context.Background(), p)
				if err != nil {
					t.Fatal(err)
				}
				return token
			},
		},
		{
			name: "tampered payload",
			token: func(t *testing.T, f jwtFixture) string {
				token, _, err := f.issuer.IssueAccessToken(context.Background(), p)
				if err != nil {
					t.Fatal(err)
				}
				forged, _, err := f.issuer.IssueAccessToken(context.Background(), types.Principal{AccountID: "acc-1", Role: types.RoleSuperAdmin})
				if err != nil {
					t.Fatal(err)
				}
				forgedParts := strings.Split(forged, ".")
				return forgedParts[0] + "." + forgedParts[1] + "." + strings.Split(token, ".")[2]
			},
		},
		{
			name: "unsigned",
			token: func(t *testing.T, f jwtFixture) string {
				claims := Claims{Role: "superadmin", RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "portal-auth",
					Subject:   "acc-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				if err != nil {
					t.Fatal(err)
				}
				return token
			},
		},
		{
			name: "missing expiry",
			token: func(t *testing.T, f jwtFixture) string {
				claims := Claims{Role: "viewer", RegisteredClaims: jwt.RegisteredClaims{Issuer: "portal-auth", Subject: "acc-1"}}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
				if err != nil {
					t.Fatal(err)
				}
				return token
			},
		},
		{
			name: "unknown role",
			token: func(t *testing.T, f jwtFixture) string {
				claims := Claims{Role: "owner", RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "portal-auth",
					Subject:   "acc-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
				if err != nil {
					t.Fatal(err)
				}
				return token
			},
		},
		{
			name:  "garbage",
			token: func(*testing.T, jwtFixture) string { return "not-a-jwt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newJWTFixture(t, ctrl, NewConfig("secret", "portal-auth", 15*time.Minute))

			got, err := f.verifier.VerifyToken(context.Background(), tt.token(t, f))
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if got != nil {
				t.Errorf("expected no principal, got %+v", got)
			}
		})
	}
}

func TestNewJWTAuthenticator(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	if _, _, err := NewJWTAuthenticator(NewConfig("secret", "", time.Minute), mockTracer, mockMonitor, mockLogger); err == nil {
		t.Errorf("expected an error without issuer")
	}

	issuer, verifier, err := NewJWTAuthenticator(NewConfig("", "portal-auth", time.Minute), mockTracer, mockMonitor, mockLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, _, err := issuer.IssueAccessToken(context.Background(), types.Principal{AccountID: "acc-1", Role: types.RoleViewer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.VerifyToken(context.Background(), token); err != nil {
		t.Errorf("expected the ephemeral key to be shared, got %v", err)
	}
}
