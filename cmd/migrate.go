// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/portal-auth/migrations"
)

// migrateCmd performs DB migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [version]|status|check]",
	Short: "Run database migrations",
	Long:  `Apply, roll back or inspect the embedded schema migrations. Defaults to "up".`,
	Args:  customValidArgs(),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd, args); err != nil {
			cmd.PrintErrln(err)
			os.Exit(1)
		}
	},
}

func customValidArgs() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
			return err
		}

		if len(args) == 0 {
			return nil
		}

		switch args[0] {
		case "up", "down", "status", "check":
		default:
			return fmt.Errorf("invalid first argument: %q", args[0])
		}

		if len(args) == 2 {
			if args[0] != "down" {
				return fmt.Errorf("invalid argument combination: %q", args)
			}

			if v, err := strconv.Atoi(args[1]); err != nil || v < 0 {
				return fmt.Errorf("invalid version number: %q", args[1])
			}
		}

		return nil
	}
}

// migrator runs goose commands and renders their results as text or JSON.
type migrator struct {
	provider *goose.Provider
	json     bool
	out      io.Writer
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	target := int64(-1)
	if len(args) > 1 {
		v, _ := strconv.Atoi(args[1])
		target = int64(v)
	}

	dsn, err := dsnFromFlags(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("DSN validation failed: %w", err)
	}

	db := stdlib.OpenDB(*config)
	defer db.Close()

	ctx := cmd.Context()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}

	var opts []goose.ProviderOption
	if format == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	m := &migrator{provider: provider, json: format == "json", out: cmd.OutOrStdout()}

	switch command {
	case "down":
		return m.down(ctx, target)
	case "status":
		return m.status(ctx)
	case "check":
		return m.check(ctx)
	default:
		return m.up(ctx)
	}
}

func (m *migrator) up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return err
	}

	return m.applied(results)
}

// down rolls back one migration, or every migration above target when set.
func (m *migrator) down(ctx context.Context, target int64) error {
	if target >= 0 {
		results, err := m.provider.DownTo(ctx, target)
		if err != nil {
			return err
		}
		return m.applied(results)
	}

	result, err := m.provider.Down(ctx)
	if err != nil {
		return err
	}

	return m.applied([]*goose.MigrationResult{result})
}

func (m *migrator) applied(results []*goose.MigrationResult) error {
	if !m.json {
		for _, r := range results {
			fmt.Fprintf(m.out, "%s %s (%s)\n", r.Direction, r.Source.Path, r.Duration)
		}
		return nil
	}

	if results == nil {
		results = []*goose.MigrationResult{}
	}

	return json.NewEncoder(m.out).Encode(map[string]any{"applied": results})
}

func (m *migrator) status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return err
	}

	if m.json {
		return json.NewEncoder(m.out).Encode(statuses)
	}

	fmt.Fprintln(m.out, "    Applied At                  Migration")
	fmt.Fprintln(m.out, "    =======================================")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(m.out, "    %-24s -- %s\n", appliedAt, s.Source.Path)
	}

	return nil
}

// check fails while migrations are pending so it can gate deployments.
func (m *migrator) check(ctx context.Context) error {
	pending, err := m.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, versionErr := m.provider.GetDBVersion(ctx)

	state := "ok"
	switch {
	case pending:
		state = "pending"
	case versionErr != nil:
		state = "unknown"
	}

	if m.json {
		return json.NewEncoder(m.out).Encode(map[string]any{"status": state, "version": current})
	}

	if pending {
		return fmt.Errorf("migrations are pending: current version %d", current)
	}

	fmt.Fprintf(m.out, "Database is up to date (version %d)\n", current)
	return nil
}

func init() {
	addDSNFlag(migrateCmd)
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}
