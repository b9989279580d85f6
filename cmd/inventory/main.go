package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vegatran/GaraManager-sub003/internal/config"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Garage inventory reconciliation and stock ledger service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newEventsCommand(),
	)
	return root
}

// loadConfig reads the configuration and initializes the global logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.Service.Name, cfg.Service.IsDevelopment())
	logger.SetLevel(cfg.Service.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Str("log_level", cfg.Service.LogLevel).
		Msg("Configuration loaded")
	return cfg, nil
}
