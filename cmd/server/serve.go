package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/config"
	"github.com/playperu/guessactor/internal/database"
	"github.com/playperu/guessactor/internal/events"
	"github.com/playperu/guessactor/internal/game"
	"github.com/playperu/guessactor/internal/handler/health"
	"github.com/playperu/guessactor/internal/server"
	"github.com/playperu/guessactor/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), cmd.OutOrStdout())
	},
}

func run(ctx context.Context, stdout io.Writer) error {
	e, err := setup(ctx, stdout)
	if err != nil {
		return err
	}
	defer e.db.Close()
	cfg, logger := e.cfg, e.logger

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return fmt.Errorf("loading tuning: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Stores ---
	players := store.NewPlayers(e.db)
	profiles := store.NewProfiles(e.db, logger)
	admins := store.NewAdmins(e.db)

	created, err := admins.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("ensuring admin: %w", err)
	}
	if created {
		logger.Info("created admin account", "email", cfg.AdminEmail)
	}

	cat := catalog.New(store.NewStages(e.db, logger), logger)
	if cfg.SeedDemo {
		n, err := cat.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seeding demo stages: %w", err)
		}
		if n > 0 {
			logger.Info("seeded demo stages", "count", n)
		}
	}

	// --- Events ---
	hub := events.NewHub()
	var publisher game.Publisher = hub
	checks := map[string]health.Checker{"sqlite": database.Checker{DB: e.db}}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.RedisURL != "" {
		rdb, err := events.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		relay := events.NewRelay(rdb, hub, logger)
		publisher = relay
		checks["redis"] = events.RedisChecker{Client: rdb}
		g.Go(func() error { return relay.Run(gctx) })
	}

	sessions := game.NewSessions(game.Deps{
		Store:     profiles,
		Stages:    cat,
		Rules:     tuning.Rules(),
		Calendar:  game.Calendar{Now: time.Now, Location: loc},
		Publisher: publisher,
		Logger:    logger,
	})

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Sessions: sessions,
		Catalog:  cat,
		Players:  players,
		Admins:   admins,
		Hub:      hub,
		Health:   checks,
		SPADir:   cfg.SPADir,
	})

	// --- Background ---
	g.Go(func() error { return cat.Watch(gctx, cfg.CatalogPoll) })
	g.Go(func() error { return sessions.Run(gctx, cfg.SessionIdle/2, cfg.SessionIdle) })

	// --- Run ---
	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr, "timezone", loc.String())
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
