package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/todo-core/internal/config"
	"github.com/phrazzld/todo-core/internal/platform/logger"
	"github.com/phrazzld/todo-core/internal/platform/sqlstore"
)

// loadConfig reads configuration and sets up the default logger from it.
func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	return cfg, l, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			l.Info("server configuration loaded",
				slog.Int("port", cfg.Server.Port),
				slog.String("log_level", cfg.Server.LogLevel),
				slog.String("database_driver", cfg.Database.Driver),
				slog.Bool("reminders_enabled", cfg.Reminders.Enabled))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, l)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
			if err != nil {
				app.cleanup()
				return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.Port, err)
			}

			return app.Run(ctx, ln)
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, sub := range []struct{ name, short string }{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "Show the state of every migration"},
		{"version", "Print the current schema version"},
		{"reset", "Roll back every migration"},
	} {
		command := sub.name
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, l, err := loadConfig(*configPath)
				if err != nil {
					return err
				}
				return runMigration(cmd.Context(), cfg, command, l)
			},
		})
	}

	return cmd
}

// runMigration opens the configured database and runs one goose command.
func runMigration(ctx context.Context, cfg *config.Config, command string, l *slog.Logger) error {
	db, dialect, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL, l)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}()

	if err := sqlstore.Migrate(ctx, db, dialect, command, l); err != nil {
		return err
	}

	l.Info("migration command completed", slog.String("command", command))
	return nil
}
