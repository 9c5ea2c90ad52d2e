// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/portal-auth/internal/types"
	"github.com/canonical/portal-auth/pkg/account"
	"github.com/canonical/portal-auth/pkg/authentication"
	"github.com/canonical/portal-auth/pkg/portal"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var createAccountCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, e.g. the first superadmin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		cost, _ := cmd.Flags().GetInt("bcrypt-cost")
		hasher, err := authentication.NewBcryptHasher(cost)
		if err != nil {
			return err
		}

		req := new(account.CreateAccountRequest)
		req.Email, _ = cmd.Flags().GetString("email")
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Role, _ = cmd.Flags().GetString("role")
		req.PortalRole, _ = cmd.Flags().GetString("portal-role")
		portalID, _ := cmd.Flags().GetString("portal-id")

		if err := authentication.NewValidator().Struct(req); err != nil {
			return fmt.Errorf("invalid account: %w", err)
		}

		svc := account.NewService(deps.storage, deps.db, hasher, deps.tracer, deps.monitor, deps.logger)
		created, err := svc.CreateAccount(cmd.Context(), operator, portalID, req)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s (ID: %s, role: %s)\n", created.Username, created.ID, created.Role)
		return nil
	},
}

var portalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Manage portals",
}

var createPortalCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new portal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		svc := portal.NewService(deps.storage, deps.tracer, deps.monitor, deps.logger)
		created, err := svc.CreatePortal(cmd.Context(), operator, args[0])
		if err != nil {
			return fmt.Errorf("failed to create portal: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Portal created: %s (ID: %s)\n", created.Name, created.ID)
		return nil
	},
}

var membershipCmd = &cobra.Command{
	Use:   "membership",
	Short: "Manage portal memberships",
}

var addMembershipCmd = &cobra.Command{
	Use:   "add [portal-id] [account-id]",
	Short: "Add an account to a portal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		if !types.PortalRole(role).Valid() {
			return fmt.Errorf("unknown portal role %q", role)
		}

		deps, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer deps.Close()

		svc := portal.NewService(deps.storage, deps.tracer, deps.monitor, deps.logger)
		if _, err := svc.AddMember(cmd.Context(), operator, args[0], args[1], types.PortalRole(role)); err != nil {
			return fmt.Errorf("failed to add membership: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Account %s added to portal %s as %s\n", args[1], args[0], role)
		return nil
	},
}

func init() {
	createAccountCmd.Flags().String("email", "", "Account email")
	createAccountCmd.Flags().String("username", "", "Account username")
	createAccountCmd.Flags().String("password", "", "Initial password")
	createAccountCmd.Flags().String("role", string(types.RoleViewer), "Global role: viewer, editor, admin or superadmin")
	createAccountCmd.Flags().String("portal-id", "", "Portal to attach the account to")
	createAccountCmd.Flags().String("portal-role", "", "Role inside --portal-id, defaults to PORTAL_VIEWER")
	createAccountCmd.Flags().Int("bcrypt-cost", 12, "bcrypt cost factor")
	_ = createAccountCmd.MarkFlagRequired("email")
	_ = createAccountCmd.MarkFlagRequired("username")
	_ = createAccountCmd.MarkFlagRequired("password")

	addMembershipCmd.Flags().String("role", string(types.PortalRoleViewer), "Portal role")

	for _, c := range []*cobra.Command{createAccountCmd, createPortalCmd, addMembershipCmd} {
		addDSNFlag(c)
	}

	accountCmd.AddCommand(createAccountCmd)
	portalCmd.AddCommand(createPortalCmd)
	membershipCmd.AddCommand(addMembershipCmd)

	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(portalCmd)
	rootCmd.AddCommand(membershipCmd)
}
