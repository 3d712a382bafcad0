package cmd

import (
	"fmt"

	"splitters/internal/core/config"
	"splitters/internal/database/migration"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runMigrations(cfg *config.Config, dir string, log *zap.Logger) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	source, err := migration.SourceURL(dir)
	if err != nil {
		return err
	}

	if err := migration.Migrate(cfg.DatabaseURL, source, true, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run migrations manually.",
		Long:  `Applies the SQL migrations to the postgres backend.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			return runMigrations(cfg, dir, log)
		},
	}
	cmd.Flags().String("dir", "", "Directory containing the migration files (default MIGRATIONS_DIR)")

	return cmd
}
