// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"testing"
)

func TestNewTracerDisabled(t *testing.T) {
	tracer := NewTracer(NewNoopConfig())

	ctx, span := tracer.Start(context.Background(), "tracing.Test")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected a context")
	}

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, "portal-auth", "otel:4317", "", nil)

	if !cfg.Enabled || cfg.ServiceName != "portal-auth" || cfg.OtelGRPCEndpoint != "otel:4317" {
		t.Errorf("unexpected config %+v", cfg)
	}
}
