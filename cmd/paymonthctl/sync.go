package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paymonth/internal/cli"
	"paymonth/internal/storage"
	"paymonth/internal/worker"
)

func (a *app) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Export transactions to the spreadsheet",
	}

	backfill := &cobra.Command{
		Use:   "backfill",
		Short: "Re-export every transaction of a user",
		Long: `backfill writes every stored transaction of the user to the configured
spreadsheet, in date order. Use it after the worker missed events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := mustString(cmd, "user")
			cfg := a.config()
			if userID == "" {
				userID = cfg.DefaultUserID
			}

			loc, err := a.location()
			if err != nil {
				return err
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.SetSettingsDefaults(cfg.DefaultSalaryDay, cfg.DefaultLocale); err != nil {
				return err
			}

			exporter, err := cli.NewExporter(cmd.Context(), a.logger, cfg)
			if err != nil {
				return err
			}

			n, err := worker.NewSyncWorker(exporter, repo, repo, loc).Backfill(cmd.Context(), userID)
			fmt.Fprintf(cmd.OutOrStdout(), "exported=%d\n", n)
			return err
		},
	}
	backfill.Flags().String("user", "", "user to export (default DEFAULT_USER_ID)")
	cmd.AddCommand(backfill)
	return cmd
}
