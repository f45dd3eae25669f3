package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-portal/internal/app/gymportal"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server: registration form, AJAX, GraphQL and login",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup("gym-portal")
		logger.Debug("loaded config", slog.String("config", cfg.String()))

		app, err := gymportal.New(cmd.Context(), cfg, logger)
		if err != nil {
			logger.Error("failed to initialize gym-portal app", sl.Err(err))
			return err
		}

		if err := app.Run(cmd.Context()); err != nil {
			logger.Error("gym-portal app stopped with error", sl.Err(err))
			return err
		}

		logger.Info("gym-portal app stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
