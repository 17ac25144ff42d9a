package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/game"
)

func handleAdminListStages(cat *catalog.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cat.Snapshot(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleAdminGetStage(cat *catalog.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := cat.ReadOnce(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// handleAdminPutStage creates or replaces the stage at {id}. The id in the
// body, if any, is ignored.
func handleAdminPutStage(cat *catalog.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st game.Stage
		if err := readJSON(w, r, &st); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		saved, err := cat.Write(r.Context(), chi.URLParam(r, "id"), st)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		logger.Info("admin wrote stage", "admin", adminFrom(r).Email, "stage_id", saved.ID)
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleAdminDeleteStage(cat *catalog.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cat.Delete(r.Context(), id); err != nil {
			writeGameError(w, logger, err)
			return
		}
		logger.Info("admin deleted stage", "admin", adminFrom(r).Email, "stage_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
