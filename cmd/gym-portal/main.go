// Package main содержит точку входа портала спортзала.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-portal/internal/config"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "gym-portal",
	Short:         "Gym membership portal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// флаг перекрывает CONFIG_PATH
		if configPath != "" {
			_ = os.Setenv("CONFIG_PATH", configPath)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (overrides CONFIG_PATH)")
}

// setup загружает конфиг и создаёт логгер под окружение.
func setup(service string) (*config.Config, *slog.Logger) {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env).With(slog.String("service", service))
	logger.Info("starting "+service, slog.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")
	return cfg, logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", sl.Err(err))
		stop()
		os.Exit(1)
	}
}
