package main

import (
	"github.com/spf13/cobra"

	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/container"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		config.InitLogger(settings.LogLevel, settings.IsProduction())

		db, err := config.Connect(cmd.Context(), settings.DatabaseDriver, settings.DatabaseDSN)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := container.Migrate(db); err != nil {
			return err
		}
		config.WithContext(cmd.Context()).Info("Migration complete")
		return nil
	},
}
