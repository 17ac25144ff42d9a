package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/guessactor/internal/game"
)

// AdRequest is the request body for POST /api/play/ads.
type AdRequest struct {
	Purpose game.AdPurpose `json:"purpose"`
	StageID string         `json:"stageId,omitempty"`
}

func handleStartAd(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Purpose == "" {
			req.Purpose = game.AdForCoins
		}

		ticket, err := sessionFrom(r).StartAd(r.Context(), req.Purpose, req.StageID)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, ticket)
	}
}

func handleCloseAd(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sessionFrom(r).CloseAd(r.Context(), chi.URLParam(r, "adID"))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
