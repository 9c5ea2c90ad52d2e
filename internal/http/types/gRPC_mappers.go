// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcCodeByCode = map[string]codes.Code{
	CodeValidation:         codes.InvalidArgument,
	CodeInvalidCredentials: codes.Unauthenticated,
	CodeInvalidRefresh:     codes.Unauthenticated,
	CodeInvalidToken:       codes.InvalidArgument,
	CodeUnauthorized:       codes.Unauthenticated,
	CodeForbidden:          codes.PermissionDenied,
	CodeTenantIDRequired:   codes.InvalidArgument,
	CodeNotFound:           codes.NotFound,
	CodeConflict:           codes.AlreadyExists,
	CodeRateLimited:        codes.ResourceExhausted,
	CodeInternal:           codes.Internal,
}

// GRPCCodeFromCode maps an error code to the gRPC status code used by the
// interceptors, so both transports agree on the failure class.
func GRPCCodeFromCode(code string) codes.Code {
	if c, ok := grpcCodeByCode[code]; ok {
		return c
	}
	return codes.Internal
}

// GRPCError builds a gRPC status error carrying the code and message.
func GRPCError(code, message string) error {
	return status.Error(GRPCCodeFromCode(code), code+": "+message)
}
