// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// TokenPrunerInterface removes token records that can no longer be used.
type TokenPrunerInterface interface {
	DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error)
	DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type pruneResult struct {
	RefreshTokens       int64 `json:"refreshTokens"`
	PasswordResetTokens int64 `json:"passwordResetTokens"`
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Maintain stored tokens",
}

var pruneTokensCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired and revoked refresh tokens and expired reset tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		format, _ := cmd.Flags().GetString("format")

		return pruneTokens(cmd.Context(), deps.storage, time.Now().UTC(), format, cmd.OutOrStdout())
	},
}

func pruneTokens(ctx context.Context, pruner TokenPrunerInterface, now time.Time, format string, out io.Writer) error {
	refresh, err := pruner.DeleteStaleRefreshTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to prune refresh tokens: %w", err)
	}

	reset, err := pruner.DeleteExpiredPasswordResetTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to prune password reset tokens: %w", err)
	}

	result := pruneResult{RefreshTokens: refresh, PasswordResetTokens: reset}

	if format == "json" {
		return json.NewEncoder(out).Encode(result)
	}

	_, err = fmt.Fprintf(out, "Pruned %d refresh tokens and %d password reset tokens\n", result.RefreshTokens, result.PasswordResetTokens)
	return err
}

func init() {
	addDSNFlag(pruneTokensCmd)
	pruneTokensCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	tokensCmd.AddCommand(pruneTokensCmd)
	rootCmd.AddCommand(tokensCmd)
}
