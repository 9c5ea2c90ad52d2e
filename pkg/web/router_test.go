// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/canonical/portal-auth/internal/authorization"
	"github.com/canonical/portal-auth/internal/db"
	"github.com/canonical/portal-auth/internal/identity"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/ratelimit"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/authentication"
	"github.com/canonical/portal-auth/pkg/portal"
)

type fakeDB struct {
	db.DBClientInterface
	pingErr error
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

type routerDeps struct {
	pingErr       error
	portalService portal.ServiceInterface
	verifier      authentication.TokenVerifierInterface
	authorizer    authorization.AuthorizerInterface
	burst         int
	opts          Options
}

func newTestRouter(pingErr error) http.Handler {
	return newTestRouterWith(routerDeps{pingErr: pingErr})
}

func newTestRouterWith(deps routerDeps) http.Handler {
	logger := logging.NewNoopLogger()
	monitor := monitoring.NewNoopMonitor("portal-auth", logger)
	tracer := tracing.NewTracer(tracing.NewNoopConfig())

	if deps.burst == 0 {
		deps.burst = 1
	}
	if deps.opts.CORSAllowedOrigins == nil {
		deps.opts.CORSAllowedOrigins = []string{"https://portal.example.com"}
	}

	return NewRouter(
		nil,
		nil,
		deps.portalService,
		authentication.NewMiddleware(deps.verifier, deps.authorizer, tracer, monitor, logger),
		identity.NewMiddleware(tracer, monitor, logger),
		ratelimit.NewLimiter(1, deps.burst, monitor, logger),
		&fakeDB{pingErr: deps.pingErr},
		deps.opts,
		tracer,
		monitor,
		logger,
	)
}

type staticVerifier struct {
	principal types.Principal
}

func (v *staticVerifier) VerifyToken(context.Context, string) (*types.Principal, error) {
	p := v.principal
	return &p, nil
}

type membershipStore map[string]*types.Membership

func (s membershipStore) GetMembership(_ context.Context, accountID, portalID string) (*types.Membership, error) {
	if m, ok := s[accountID+"/"+portalID]; ok {
		return m, nil
	}
	return nil, storage.ErrNotFound
}

type membersOnlyPortalService struct {
	portal.ServiceInterface
}

func (membersOnlyPortalService) ListMembers(context.Context, string) ([]*types.Membership, error) {
	return []*types.Membership{}, nil
}

func TestRouter_Probes(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		pingErr        error
		expectedStatus int
	}{
		{name: "status", path: "/api/v0/status", expectedStatus: http.StatusOK},
		{name: "ready", path: "/api/v0/ready", expectedStatus: http.StatusOK},
		{name: "not ready", path: "/api/v0/ready", pingErr: errors.New("down"), expectedStatus: http.StatusServiceUnavailable},
		{name: "metrics", path: "/api/v0/metrics", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newTestRouter(tt.pingErr).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v0/accounts/me"},
		{http.MethodPost, "/api/v0/accounts"},
		{http.MethodGet, "/api/v0/portals"},
		{http.MethodGet, "/api/v0/portals/members"},
		{http.MethodPost, "/api/v0/auth/logout"},
		{http.MethodPost, "/api/v0/auth/logout-all"},
	}

	router := newTestRouter(nil)

	for _, p := range paths {
		t.Run(p.method+p.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(p.method, p.path, nil))

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rr.Code)
			}
			if rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Errorf("expected WWW-Authenticate header")
			}
		})
	}
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	router := newTestRouter(nil)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", bytes.NewBufferString(`{}`))
		req.RemoteAddr = "192.0.2.10:4000"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send(); code != http.StatusBadRequest {
		t.Fatalf("expected first request to reach validation, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", code)
	}
}

func TestRouter_LoginRateLimitIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	router := newTestRouterWith(routerDeps{burst: 2})

	passed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", bytes.NewBufferString(`{}`))
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusTooManyRequests {
			passed++
		}
	}

	if passed != 2 {
		t.Fatalf("expected only the burst of 2 to get through, got %d", passed)
	}
}

func TestRouter_TrustedProxyForwardsClientAddress(t *testing.T) {
	router := newTestRouterWith(routerDeps{
		opts: Options{TrustedProxies: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}},
	})

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", bytes.NewBufferString(`{}`))
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set("X-Forwarded-For", client+", 10.1.2.3")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("198.51.100.1"); code != http.StatusBadRequest {
		t.Fatalf("expected first client to reach validation, got %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusBadRequest {
		t.Fatalf("expected second client to have its own bucket, got %d", code)
	}
	if code := send("198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected first client to be rate limited, got %d", code)
	}
}

func TestRouter_PortalAdminIsolation(t *testing.T) {
	logger := logging.NewNoopLogger()
	monitor := monitoring.NewNoopMonitor("portal-auth", logger)
	tracer := tracing.NewTracer(tracing.NewNoopConfig())

	memberships := membershipStore{
		"admin-1/portal-a": {AccountID: "admin-1", PortalID: "portal-a", Role: types.PortalRoleAdmin, Active: true},
	}
	admin := types.Principal{AccountID: "admin-1", Role: types.RoleAdmin, PortalID: "portal-a"}

	tests := []struct {
		name              string
		legacyAdminBypass bool
		portalID          string
		expectedStatus    int
	}{
		{name: "own portal without bypass", portalID: "portal-a", expectedStatus: http.StatusOK},
		{name: "foreign portal without bypass", portalID: "portal-b", expectedStatus: http.StatusForbidden},
		{name: "foreign portal with bypass", legacyAdminBypass: true, portalID: "portal-b", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouterWith(routerDeps{
				portalService: membersOnlyPortalService{},
				verifier:      &staticVerifier{principal: admin},
				authorizer:    authorization.NewAuthorizer(memberships, tt.legacyAdminBypass, tracer, monitor, logger),
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v0/portals/members", nil)
			req.Header.Set("Authorization", "Bearer token")
			req.Header.Set(identity.HeaderName, tt.portalID)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v0/auth/login", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", identity.HeaderName)

	rr := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.com" {
		t.Fatalf("expected allowed origin to be echoed, got %q", got)
	}
}
