// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

//go:generate mockgen -build_flags=--mod=mod -package identity -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package identity -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package identity -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestMiddleware_HTTPMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "header present", header: "portal-a", expected: "portal-a"},
		{name: "header padded", header: "  portal-b ", expected: "portal-b"},
		{name: "header missing", header: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "identity.Middleware.HTTPMiddleware").Return(context.Background(), trace.SpanFromContext(context.Background()))

			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = RequestedPortal(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}

			NewMiddleware(mockTracer, mockMonitor, mockLogger).HTTPMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("expected requested portal %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMiddleware_GRPCInterceptor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-portal-id", "portal-a"))
	mockTracer.EXPECT().Start(gomock.Any(), "identity.Middleware.GRPCInterceptor").Return(ctx, trace.SpanFromContext(ctx))

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return RequestedPortal(ctx), nil
	}

	resp, err := NewMiddleware(mockTracer, mockMonitor, mockLogger).GRPCInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "portal-a" {
		t.Errorf("expected portal-a, got %v", resp)
	}
}

func TestPortalContext(t *testing.T) {
	if _, ok := Portal(context.Background()); ok {
		t.Errorf("expected no portal on an empty context")
	}

	ctx := WithPortal(context.Background(), "")
	if id, ok := Portal(ctx); !ok || id != "" {
		t.Errorf("expected an empty authorized portal, got %q %v", id, ok)
	}
}
