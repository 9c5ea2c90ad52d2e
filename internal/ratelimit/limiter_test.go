// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
)

func newTestLimiter(burst int) *Limiter {
	logger := logging.NewNoopLogger()
	return NewLimiter(1, burst, monitoring.NewNoopMonitor("test", logger), logger)
}

func TestLimiterMiddleware(t *testing.T) {
	l := newTestLimiter(2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	expected := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range expected {
		if codes[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, codes)
		}
	}

	// a different client keeps its own bucket
	req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:4000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected second client to pass, got %d", w.Code)
	}
}

func TestLimiterMiddlewareIgnoresForwardedFor(t *testing.T) {
	l := newTestLimiter(2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	passed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			passed++
		}
	}

	if passed != 2 {
		t.Fatalf("expected only the burst of 2 to pass, got %d", passed)
	}
}

func TestLimiterSweep(t *testing.T) {
	l := newTestLimiter(1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(idleTTL + time.Second)
	l.Allow("b")

	if n := l.Sweep(); n != 1 {
		t.Errorf("expected 1 bucket removed, got %d", n)
	}
	if _, ok := l.buckets["b"]; !ok {
		t.Errorf("expected recent bucket to survive")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		expected   string
	}{
		{"forwarding headers are ignored", "203.0.113.7, 10.0.0.1", "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", "", "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
