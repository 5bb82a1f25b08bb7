package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/gig-booking/internal/database"
)

func newMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded schema migrations to the configured store.

Works for both DB_DRIVER=mysql and DB_DRIVER=sqlite and prints the schema
version afterwards.  Already applied migrations are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			db, _, err := database.Open(cmd.Context(), database.Options{
				Driver:      cfg.DBDriver,
				User:        cfg.DBUser,
				Pass:        cfg.DBPass,
				Host:        cfg.DBHost,
				Port:        cfg.DBPort,
				Name:        cfg.DBName,
				SQLitePath:  cfg.SQLitePath,
				AutoMigrate: true,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := database.MigrationVersion(cmd.Context(), db, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", cfg.DBDriver, version)
			return nil
		},
	}
}
