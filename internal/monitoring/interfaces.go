// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

type MonitorInterface interface {
	GetService() string
	// SetResponseTimeMetric observes an HTTP request latency in seconds.
	SetResponseTimeMetric(map[string]string, float64) error
	// SetDependencyAvailability reports 1 when a dependency is reachable, 0 otherwise.
	SetDependencyAvailability(map[string]string, float64) error
	// IncAuthEventMetric counts authentication outcomes by event and outcome.
	IncAuthEventMetric(map[string]string) error
}
