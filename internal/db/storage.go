// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/tracing"
)

const defaultTxTimeout = 30 * time.Second

type txContextKey struct{}
type lazyTxContextKey struct{}

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	TracingEnabled  bool
}

var txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// lazyTx opens its transaction on the first statement issued through it, so
// WithTx blocks that never touch the database cost nothing.
type lazyTx struct {
	db     *sql.DB
	tx     TxInterface
	err    error
	cancel context.CancelFunc
	done   bool
}

func (lt *lazyTx) get() (TxInterface, error) {
	if lt.tx != nil {
		return lt.tx, nil
	}

	if lt.err != nil {
		return nil, lt.err
	}

	// detached from the request context so a client disconnect cannot
	// roll back a transaction halfway through a commit
	ctx, cancel := context.WithTimeout(context.Background(), defaultTxTimeout)
	tx, err := lt.db.BeginTx(ctx, txOptions)
	if err != nil {
		cancel()
		lt.err = fmt.Errorf("failed to begin transaction: %w", err)
		return nil, lt.err
	}

	lt.tx = tx
	lt.cancel = cancel
	return tx, nil
}

func (lt *lazyTx) started() bool {
	return lt.tx != nil
}

// failedRunner stands in for a transaction that could not be opened.
type failedRunner struct {
	err error
}

type failedRow struct {
	err error
}

func (r failedRow) Scan(...interface{}) error { return r.err }

func (f failedRunner) Exec(string, ...interface{}) (sql.Result, error) { return nil, f.err }

func (f failedRunner) Query(string, ...interface{}) (*sql.Rows, error) { return nil, f.err }

func (f failedRunner) QueryRow(string, ...interface{}) sq.RowScanner { return failedRow(f) }

func (f failedRunner) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, f.err
}

func (f failedRunner) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, f.err
}

func (f failedRunner) QueryRowContext(context.Context, string, ...interface{}) sq.RowScanner {
	return failedRow(f)
}

type DBClient struct {
	pool *pgxpool.Pool
	db   *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (d *DBClient) builder(runner sq.BaseRunner) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(runner)
}

// Statement returns a query builder bound to the transaction carried by ctx
// if any, the pool otherwise. Inside WithTx a transaction that fails to
// begin yields a builder whose statements all return that error.
func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	if lt, ok := ctx.Value(lazyTxContextKey{}).(*lazyTx); ok {
		tx, err := lt.get()
		if err != nil {
			d.logger.Errorf("failed to open transaction: %v", err)
			return d.builder(failedRunner{err: err})
		}
		return d.builder(tx)
	}

	if tx := TxFromContext(ctx); tx != nil {
		return d.builder(tx)
	}

	return d.builder(d.db)
}

// BeginTx starts a transaction eagerly and attaches it to the returned context.
func (d *DBClient) BeginTx(ctx context.Context) (context.Context, TxInterface, error) {
	tx, err := d.db.BeginTx(ctx, txOptions)
	if err != nil {
		return ctx, nil, err
	}

	return ContextWithTx(ctx, tx), tx, nil
}

func ContextWithTx(ctx context.Context, tx TxInterface) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func TxFromContext(ctx context.Context) TxInterface {
	if tx, ok := ctx.Value(txContextKey{}).(TxInterface); ok {
		return tx
	}
	return nil
}

// WithTx runs fn inside a single transaction committed when fn returns nil
// and rolled back otherwise. Nested calls join the outer transaction.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(lazyTxContextKey{}).(*lazyTx); ok {
		return fn(ctx)
	}

	lt := &lazyTx{db: d.db}

	defer func() {
		if lt.started() && !lt.done {
			if err := lt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				d.logger.Errorf("failed to rollback transaction: %v", err)
			}
		}
		if lt.cancel != nil {
			lt.cancel()
		}
	}()

	if err := fn(context.WithValue(ctx, lazyTxContextKey{}, lt)); err != nil {
		return err
	}

	if lt.err != nil {
		return lt.err
	}

	if !lt.started() {
		return nil
	}

	if err := lt.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	lt.done = true

	return nil
}

// Ping checks the database is reachable and reports it as a dependency metric.
func (d *DBClient) Ping(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.Ping")
	defer span.End()

	err := d.db.PingContext(ctx)

	available := 1.0
	if err != nil {
		available = 0
	}
	if merr := d.monitor.SetDependencyAvailability(map[string]string{"component": "database"}, available); merr != nil {
		d.logger.Debugf("failed to set database availability: %v", merr)
	}

	return err
}

func (d *DBClient) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}
}

// NewDBClient opens a pgx pool for cfg.DSN and exposes it through database/sql.
func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}

	if cfg.TracingEnabled {
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	config.MaxConns = cfg.MaxConns
	config.MinConns = cfg.MinConns
	config.MaxConnLifetime = cfg.MaxConnLifetime
	config.MaxConnLifetimeJitter = cfg.MaxConnLifetime / 10
	config.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if cfg.TracingEnabled {
		if err := otelpgx.RecordStats(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to start metrics collection for database: %w", err)
		}
	}

	d := newDBClient(stdlib.OpenDBFromPool(pool), tracer, monitor, logger)
	d.pool = pool

	if err := d.Ping(context.Background()); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return d, nil
}

func newDBClient(db *sql.DB, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *DBClient {
	d := new(DBClient)
	d.db = db

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d
}
