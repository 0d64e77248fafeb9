package main

import (
	"context"
	"time"

	"github.com/kelvin262292/storefront/internal/database"
	"github.com/kelvin262292/storefront/internal/logger"
	"github.com/spf13/cobra"
)

var migrateTarget int32

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Migrates the schema to the latest version, or to --to. A lower version than the current one rolls back.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := logger.NewLogger(cfg.Observability)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		return database.Migrate(ctx, &log, cfg, migrateTarget)
	},
}

func init() {
	migrateCmd.Flags().Int32Var(&migrateTarget, "to", 0, "target schema version (0 means latest)")
}
