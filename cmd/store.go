// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/portal-auth/internal/db"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
	"github.com/canonical/portal-auth/internal/storage"
	"github.com/canonical/portal-auth/internal/tracing"
	"github.com/canonical/portal-auth/internal/types"
)

// operator is the principal attributed to changes made from the CLI.
var operator = types.Principal{AccountID: "cli", Role: types.RoleSuperAdmin}

type cliDeps struct {
	db      *db.DBClient
	storage *storage.Storage

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func addDSNFlag(c *cobra.Command) {
	c.Flags().String("dsn", "", "PostgreSQL DSN connection string, defaults to $DSN")
}

func dsnFromFlags(cmd *cobra.Command) (string, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = os.Getenv("DSN")
	}

	if dsn == "" {
		return "", fmt.Errorf("a DSN is required, use --dsn or set $DSN")
	}

	return dsn, nil
}

func openStore(cmd *cobra.Command) (*cliDeps, error) {
	dsn, err := dsnFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("error")
	monitor := monitoring.NewNoopMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewNoopConfig())

	dbClient, err := db.NewDBClient(db.Config{DSN: dsn, MaxConns: 2, MinConns: 1}, tracer, monitor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}

	return &cliDeps{
		db:      dbClient,
		storage: storage.NewStorage(dbClient, tracer, monitor, logger),
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}, nil
}

func (d *cliDeps) Close() {
	d.db.Close()
	_ = d.logger.Sync()
}
