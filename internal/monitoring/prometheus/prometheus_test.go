// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/canonical/portal-auth/internal/logging"
)

func TestMonitorAuthEvents(t *testing.T) {
	m := NewMonitor("portal-auth-test", logging.NewNoopLogger())

	labels := map[string]string{"event": "login", "outcome": "failure"}
	for i := 0; i < 3; i++ {
		if err := m.IncAuthEventMetric(labels); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if v := testutil.ToFloat64(m.authEvents.With(labels)); v != 3 {
		t.Errorf("expected counter at 3, got %v", v)
	}
}

func TestMonitorDependencyAvailability(t *testing.T) {
	m := NewMonitor("portal-auth-test", logging.NewNoopLogger())

	tags := map[string]string{"component": "database"}
	if err := m.SetDependencyAvailability(tags, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := testutil.ToFloat64(m.dependencies.With(tags)); v != 1 {
		t.Errorf("expected gauge at 1, got %v", v)
	}
}

func TestMonitorUninstantiated(t *testing.T) {
	m := new(Monitor)

	if err := m.SetResponseTimeMetric(map[string]string{}, 1); err == nil {
		t.Error("expected error for missing histogram")
	}
	if err := m.IncAuthEventMetric(map[string]string{}); err == nil {
		t.Error("expected error for missing counter")
	}
}
