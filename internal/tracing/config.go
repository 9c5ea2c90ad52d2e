// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"github.com/canonical/portal-auth/internal/logging"
)

// Config selects the span exporter: OTLP gRPC wins over OTLP HTTP, and
// stdout is used when neither endpoint is set.
type Config struct {
	ServiceName      string
	OtelHTTPEndpoint string
	OtelGRPCEndpoint string
	Logger           logging.LoggerInterface

	Enabled bool
}

func NewConfig(enabled bool, serviceName, otelGRPCEndpoint, otelHTTPEndpoint string, logger logging.LoggerInterface) *Config {
	return &Config{
		ServiceName:      serviceName,
		OtelGRPCEndpoint: otelGRPCEndpoint,
		OtelHTTPEndpoint: otelHTTPEndpoint,
		Logger:           logger,
		Enabled:          enabled,
	}
}

func NewNoopConfig() *Config {
	return &Config{Enabled: false}
}
