package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gridline-labs/gridline/internal/config"
	"github.com/gridline-labs/gridline/internal/engine"
	"github.com/gridline-labs/gridline/internal/server"
	"github.com/gridline-labs/gridline/internal/store"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Gridline API server",
		Long: `Start the HTTP API server backed by the SQLite database.

Pending migrations are applied on startup. The server runs until
interrupted (Ctrl+C) and shuts down gracefully.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			st := store.NewSQLiteStore()
			if err := st.Open(cfg.DatabasePath); err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			eng := engine.New(engine.Config{Store: st, Logger: logger})
			if err := eng.RepairDefaultViews(cmd.Context()); err != nil {
				return err
			}
			srv := server.NewServer(server.Config{
				Engine: eng,
				Port:   cfg.Port,
				Logger: logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx)
		},
	}
}

// newLogger builds the process logger from the resolved config.
// --verbose forces debug regardless of log_level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
