// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import "context"

type requestedPortalKey struct{}

type portalKey struct{}

// WithRequestedPortal stores the portal named by the client, before any check.
func WithRequestedPortal(ctx context.Context, portalID string) context.Context {
	return context.WithValue(ctx, requestedPortalKey{}, portalID)
}

// RequestedPortal returns the portal named by the client, or "".
func RequestedPortal(ctx context.Context) string {
	id, _ := ctx.Value(requestedPortalKey{}).(string)
	return id
}

// WithPortal stores the portal the request was authorized to operate on.
func WithPortal(ctx context.Context, portalID string) context.Context {
	return context.WithValue(ctx, portalKey{}, portalID)
}

// Portal returns the authorized portal. The boolean is false when no portal
// gate ran for the request.
func Portal(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(portalKey{}).(string)
	return id, ok
}
