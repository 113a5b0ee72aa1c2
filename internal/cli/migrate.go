package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vietddude/ecoscout/internal/infra/storage/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cfg.Database.Driver == sqlstore.DriverMemory {
		slog.Info("Memory storage has no migrations")
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	version, err := db.MigrationVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database %s migrated to version %d\n", db.Driver(), version)
	return nil
}
