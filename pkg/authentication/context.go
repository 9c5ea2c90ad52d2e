// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/portal-auth/internal/types"
)

// Define a private custom type to avoid collisions
type contextKey struct{}

var principalContextKey = contextKey{}

// WithPrincipal returns a new context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the authenticated principal.
// Returns false on routes the Authenticate middleware did not guard.
func PrincipalFromContext(ctx context.Context) (types.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(types.Principal)
	return p, ok
}
