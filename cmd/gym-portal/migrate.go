package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-portal/internal/migrations"
	"github.com/magabrotheeeer/gym-portal/internal/storage"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup("migrate")
		db, err := storage.New(cfg.StorageConnectionString)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if downSteps < 1 {
			return fmt.Errorf("steps must be positive, got %d", downSteps)
		}
		cfg, logger := setup("migrate")
		db, err := storage.New(cfg.StorageConnectionString)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Down(db.DB, cfg.MigrationsPath, downSteps); err != nil {
			return err
		}
		logger.Info("migrations rolled back", slog.Int("steps", downSteps))
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := setup("migrate")
		db, err := storage.New(cfg.StorageConnectionString)
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := migrations.Version(db.DB, cfg.MigrationsPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d, dirty %t\n", version, dirty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	migrateDownCmd.Flags().IntVarP(&downSteps, "steps", "n", 1, "number of migrations to roll back")
}
