package commands

import (
	"fmt"

	"github.com/gridline-labs/gridline/internal/config"
	"github.com/gridline-labs/gridline/internal/store"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Apply all pending schema migrations to the SQLite database and report the resulting version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			st := store.NewSQLiteStore()
			if err := st.Open(cfg.DatabasePath); err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			version, err := st.MigrationVersion()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at migration version %d\n", cfg.DatabasePath, version)
			return nil
		},
	}
}
