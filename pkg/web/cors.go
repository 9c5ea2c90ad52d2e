// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/canonical/portal-auth/internal/identity"
)

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(
		cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{
				http.MethodHead,
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
			},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", identity.HeaderName},
			ExposedHeaders:   []string{"Retry-After", "WWW-Authenticate"},
			AllowCredentials: true,
			MaxAge:           300,
		},
	)
}
