// server runs the Guess the Actor backend.
//
// Usage:
//
//	server serve                   - Start the HTTP API (default)
//	server stages import <file>    - Load stages from a YAML file
//	server stages list             - Print the catalog
//	server profile show <playerID> - Print a player's stored profile
//
// Configuration comes from the environment; see internal/config.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/playperu/guessactor/internal/config"
	"github.com/playperu/guessactor/internal/database"
	"github.com/playperu/guessactor/internal/migrations"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Guess the Actor backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(profileCmd)
}

// env is what every command needs: configuration, a logger and a migrated
// database.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
}

func setup(ctx context.Context, logOut io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	return &env{cfg: cfg, logger: logger, db: db}, nil
}
