package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoAgora/go-agora/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err = daemon.Migrate(db); err != nil {
			return err
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database migrated")

		return nil
	},
}
