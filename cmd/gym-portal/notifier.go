package main

import (
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-portal/internal/app/notifier"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consume registration events and send welcome emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup("notifier")

		app, err := notifier.New(cmd.Context(), cfg, logger)
		if err != nil {
			logger.Error("failed to initialize notifier app", sl.Err(err))
			return err
		}

		if err := app.Run(cmd.Context()); err != nil {
			logger.Error("notifier app stopped with error", sl.Err(err))
			return err
		}

		logger.Info("notifier app stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifierCmd)
}
