package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/guessactor/internal/game"
)

// SoundRequest is the request body for PUT /api/play/sound. Omitted fields
// are left unchanged.
type SoundRequest struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Volume  *float64 `json:"volume,omitempty"`
}

// DailyResponse is the response for POST /api/play/daily.
type DailyResponse struct {
	Reward  game.Reward      `json:"reward"`
	Profile game.ProfileView `json:"profile"`
}

func handleRegister(players PlayerStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := players.Register(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		logger.Info("player registered", "player_id", p.ID)
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionFrom(r).View())
	}
}

func handleSound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SoundRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		prefs, err := sessionFrom(r).SetSound(r.Context(), req.Enabled, req.Volume)
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

func handleDaily(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		reward, err := sess.ClaimDaily(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, DailyResponse{Reward: reward, Profile: sess.View()})
	}
}
