package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/repository"
	"github.com/vegatran/GaraManager-sub003/pkg/database"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the inventory schema",
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

			return migrate(db)
		},
	}
}

func migrate(db *gorm.DB) error {
	if err := repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate inventory tables: %w", err)
	}
	if err := audit.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate audit table: %w", err)
	}
	logger.Logger.Info().Msg("Database migrated successfully")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to close database")
	}
}
