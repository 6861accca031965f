package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/permit-service/db"
	"github.com/frahmantamala/permit-service/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the db migrations embedded from db/migrations",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "read migrations from this directory instead of the embedded set")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetTableName("schema_migrations")

	dir := migrateDir
	if dir == "" {
		goose.SetBaseFS(db.Migrations)
		dir = db.MigrationsDir
	} else {
		goose.SetBaseFS(nil)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}

	logger.L().Info("running migrations", "command", command, "dir", dir)
	if err := goose.RunContext(ctx, command, sqlDB, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}
