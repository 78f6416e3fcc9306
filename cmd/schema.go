package cmd

import (
	"fmt"

	"livelist/core/config"
	"livelist/core/database"
	"livelist/core/logger"
	"livelist/feature/rows"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateSchema bool

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema of persisted lists",
	Long:  `Connects to the configured database and reports the columns of the list rows table that are missing. With --migrate the table is created or updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if migrateSchema {
			if err := rows.Migrate(db); err != nil {
				return err
			}
			logg.Info("Migrated list rows", zap.String("table", rows.TableName))
		}

		missing, err := rows.NewTable(db, "", logg).Check()
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", rows.TableName, err)
		}
		if len(missing) > 0 {
			logg.Error("Schema check failed", zap.String("table", rows.TableName), zap.Strings("missing", missing))
			return fmt.Errorf("table %s is missing %d columns", rows.TableName, len(missing))
		}
		logg.Info("Schema check passed", zap.String("table", rows.TableName))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&migrateSchema, "migrate", false, "Create or update the list rows table before checking")
}
