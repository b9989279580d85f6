package main

import (
	"github.com/spf13/cobra"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/seed"
	"github.com/vegatran/GaraManager-sub003/pkg/database"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo warehouse hierarchy and parts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.NewGormConnection(cfg.Database)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := migrate(db); err != nil {
				return err
			}
			res, err := seed.Run(cmd.Context(), db)
			if err != nil {
				return err
			}
			cmd.Printf("created %d warehouses, %d zones, %d bins, %d parts\n", res.Warehouses, res.Zones, res.Bins, res.Parts)
			return nil
		},
	}
}
