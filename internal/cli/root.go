// Package cli provides the command-line interface for Gridline.
package cli

import (
	"fmt"
	"os"

	"github.com/gridline-labs/gridline/internal/cli/commands"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridline",
		Short: "Gridline - Typed Grid Database",
		Long: `Gridline is a server for user-defined tables with typed columns,
saved views, and a cursor-paginated query engine, backed by SQLite.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and SQLite
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gridline.yaml)")
	rootCmd.PersistentFlags().String("database-path", "", "Path to the SQLite database file")
	rootCmd.PersistentFlags().Int("port", 0, "Port for the API server")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewServeCommand(&cfgFile))
	rootCmd.AddCommand(commands.NewMigrateCommand(&cfgFile))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
