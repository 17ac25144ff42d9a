package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/guessactor/internal/game"
)

// AnswerRequest is the request body for POST /api/play/round/answer.
type AnswerRequest struct {
	Label string `json:"label"`
}

func handleRound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		play, err := sessionFrom(r).Current()
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, play)
	}
}

func handleAnswer(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Label == "" {
			writeError(w, http.StatusBadRequest, "label is required")
			return
		}

		res, err := sessionFrom(r).Answer(r.Context(), req.Label)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleNext(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sessionFrom(r).Next(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleLeave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		sess.Leave()
		writeJSON(w, http.StatusOK, sess.View())
	}
}

func handlePowerUp(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := game.PowerUp(chi.URLParam(r, "kind"))
		res, err := sessionFrom(r).UsePowerUp(r.Context(), kind)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
