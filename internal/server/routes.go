package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/guessactor/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Guess the Actor API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Health, health.Optional("redis")).Routes())

	r.Post("/api/players", handleRegister(deps.Players, logger))

	// Player routes, authenticated by bearer token.
	r.Route("/api/play", func(r chi.Router) {
		r.Use(playerAuth(deps.Players, deps.Sessions, logger))

		r.Get("/profile", handleProfile())
		r.Put("/sound", handleSound(logger))
		r.Post("/daily", handleDaily(logger))

		r.Get("/stages", handleStages(deps.Catalog, logger))
		r.Get("/stages/stream", handleStageStream(deps.Catalog, logger))
		r.Post("/stages/{stageID}/start", handleStart(logger))
		r.Post("/stages/{stageID}/buy", handleBuy(logger))

		r.Get("/round", handleRound(logger))
		r.Post("/round/answer", handleAnswer(logger))
		r.Post("/round/next", handleNext(logger))
		r.Post("/round/leave", handleLeave())
		r.Post("/round/powerups/{kind}", handlePowerUp(logger))

		r.Post("/ads", handleStartAd(logger))
		r.Post("/ads/{adID}/close", handleCloseAd(logger))

		r.Get("/ws", handleMirror(deps.Hub, logger))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handleAdminLogin(deps.Admins, logger))
		r.Post("/logout", handleAdminLogout(deps.Admins))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(deps.Admins))
			r.Get("/me", handleAdminMe())
			r.Get("/stages", handleAdminListStages(deps.Catalog, logger))
			r.Get("/stages/{id}", handleAdminGetStage(deps.Catalog, logger))
			r.Put("/stages/{id}", handleAdminPutStage(deps.Catalog, logger))
			r.Delete("/stages/{id}", handleAdminDeleteStage(deps.Catalog, logger))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
