// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// DBClientInterface is the database handle shared by storage and the
// transaction middleware. Statement runs inside the transaction carried by
// ctx, if any.
type DBClientInterface interface {
	Statement(context.Context) sq.StatementBuilderType
	BeginTx(context.Context) (context.Context, TxInterface, error)
	// WithTx runs fn in a transaction, joining one already in ctx.
	WithTx(context.Context, func(context.Context) error) error
	Ping(context.Context) error
	Close()
}

type TxInterface interface {
	sq.BaseRunner
	Commit() error
	Rollback() error
}
