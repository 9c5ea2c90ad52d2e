// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"
)

const (
	EnvironmentProduction = "production"

	minBcryptCost = 12
	maxBcryptCost = 31
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	Environment string `envconfig:"environment" default:"development"`

	JWTSecret       string        `envconfig:"jwt_secret"`
	JWTIssuer       string        `envconfig:"jwt_issuer" default:"portal-auth"`
	AccessTokenTTL  time.Duration `envconfig:"access_token_ttl" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"refresh_token_ttl" default:"168h"`
	ResetTokenTTL   time.Duration `envconfig:"reset_token_ttl" default:"1h"`
	BcryptCost      int           `envconfig:"bcrypt_cost" default:"12"`

	LegacyAdminBypass bool `envconfig:"legacy_admin_bypass" default:"true"`

	RateLimitRPS   float64 `envconfig:"rate_limit_rps" default:"1"`
	RateLimitBurst int     `envconfig:"rate_limit_burst" default:"5"`

	ResetWebhookURL string `envconfig:"reset_webhook_url"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`

	// TrustedProxies lists the peers, as IPs or CIDRs, whose forwarding
	// headers decide the client address. Empty means RemoteAddr is used as is.
	TrustedProxies []string `envconfig:"trusted_proxies"`
}

// IsProduction reports whether the service runs in the production environment.
func (s *EnvSpec) IsProduction() bool {
	return s.Environment == EnvironmentProduction
}

// Validate checks the settings envconfig cannot express with tags.
func (s *EnvSpec) Validate() error {
	var errs []error

	if s.IsProduction() && s.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret must be set in production"))
	}

	if s.BcryptCost < minBcryptCost || s.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, s.BcryptCost))
	}

	if s.AccessTokenTTL <= 0 || s.RefreshTokenTTL <= 0 || s.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}

	if s.RateLimitRPS <= 0 || s.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit settings must be positive"))
	}

	if _, err := s.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// TrustedProxyPrefixes parses TrustedProxies, turning bare IPs into
// single address prefixes.
func (s *EnvSpec) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))

	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}
