package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridline-labs/gridline/internal/config"
	"github.com/spf13/cobra"
)

const configTemplate = `# Gridline configuration
database_path: %s
port: %d
log_level: %s
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Gridline project",
		Long: `Initialize a new Gridline project with a default configuration file.

This creates a gridline.yaml with the database path, server port, and
log level. The database itself is created on first serve or migrate.`,
		Example: `  # Initialize in current directory
  gridline init

  # Initialize in a new directory
  gridline init my-project

  # Force overwrite existing config
  gridline init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if dir != "." {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			configPath := filepath.Join(dir, "gridline.yaml")
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("gridline.yaml already exists. Use --force to overwrite")
			}

			content := fmt.Sprintf(configTemplate,
				config.DefaultDatabasePath, config.DefaultPort, config.DefaultLogLevel)
			if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'gridline serve' to start the API server.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}
