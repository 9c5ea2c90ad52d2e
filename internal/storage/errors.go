// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

var integrityViolations = map[string]error{
	pgErrCodeUniqueViolation:     ErrDuplicateKey,
	pgErrCodeForeignKeyViolation: ErrForeignKeyViolation,
}

// classify maps Postgres integrity violations onto the storage sentinels,
// keeping the violated constraint in the message. Other errors are returned
// unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	sentinel, ok := integrityViolations[pgErr.Code]
	if !ok {
		return err
	}

	if pgErr.ConstraintName == "" {
		return sentinel
	}

	return fmt.Errorf("constraint %s: %w", pgErr.ConstraintName, sentinel)
}
