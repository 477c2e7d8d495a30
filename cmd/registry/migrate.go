package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"impactledger/internal/platform/config"
	"impactledger/internal/platform/postgres"
	"impactledger/internal/registry/store"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		Long:  "Create the delegate, credential and counter tables if they do not exist. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrate")
			}

			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Migrate(ctx, db); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema applied\n", color.New(color.FgGreen).Sprint("✓"))
			return nil
		},
	}
}
