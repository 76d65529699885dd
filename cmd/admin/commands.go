package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/users"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sqlDB, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		if status, _ := cmd.Flags().GetBool("status"); status {
			return db.MigrationStatus(cmd.Context(), sqlDB)
		}
		return db.RunMigrations(cmd.Context(), sqlDB)
	},
}

var setPlanCmd = &cobra.Command{
	Use:   "set-plan",
	Short: "Set a user's plan (FREE or PREMIUM)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		plan, _ := cmd.Flags().GetString("plan")
		svc, closeFn, err := openUsers(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return setPlan(cmd.Context(), svc, email, plan, cmd.OutOrStdout())
	},
}

var resetUsageCmd = &cobra.Command{
	Use:   "reset-usage",
	Short: "Clear a user's monthly resume counter",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		svc, closeFn, err := openUsers(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return resetUsage(cmd.Context(), svc, email, cmd.OutOrStdout())
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print a user's plan and monthly usage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		svc, closeFn, err := openUsers(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return printUsage(cmd.Context(), svc, email, cmd.OutOrStdout())
	},
}

func init() {
	migrateCmd.Flags().Bool("status", false, "print migration status instead of applying")

	for _, c := range []*cobra.Command{setPlanCmd, resetUsageCmd, usageCmd} {
		c.Flags().String("email", "", "user email")
		c.MarkFlagRequired("email")
	}
	setPlanCmd.Flags().String("plan", "", "FREE or PREMIUM")
	setPlanCmd.MarkFlagRequired("plan")

	rootCmd.AddCommand(migrateCmd, setPlanCmd, resetUsageCmd, usageCmd)
}

func setPlan(ctx context.Context, svc *users.Service, email, rawPlan string, out io.Writer) error {
	plan, err := users.ParsePlan(rawPlan)
	if err != nil {
		return err
	}
	user, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	if _, err := svc.SetPlan(ctx, user.ID, plan); err != nil {
		return err
	}
	return printUsage(ctx, svc, email, out)
}

func resetUsage(ctx context.Context, svc *users.Service, email string, out io.Writer) error {
	user, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	if _, err := svc.ResetUsage(ctx, user.ID); err != nil {
		return err
	}
	return printUsage(ctx, svc, email, out)
}

func printUsage(ctx context.Context, svc *users.Service, email string, out io.Writer) error {
	user, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	usage, err := svc.Usage(ctx, user.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"email": user.Email, "usage": usage})
}
