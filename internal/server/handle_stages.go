package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/game"
)

// StagesResponse is the player's view of the catalog.
type StagesResponse struct {
	Version uint64           `json:"version"`
	Stages  []game.StageCard `json:"stages"`
}

func handleStages(cat *catalog.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cat.Snapshot(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, StagesResponse{
			Version: snap.Version,
			Stages:  sessionFrom(r).Stages(snap.Stages),
		})
	}
}

// handleStageStream pushes the player's stage list on connect and after
// every catalog change.
func handleStageStream(cat *catalog.Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		snaps, err := cat.Subscribe(r.Context())
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		sess := sessionFrom(r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case snap, ok := <-snaps:
				if !ok {
					return
				}
				data, _ := json.Marshal(StagesResponse{
					Version: snap.Version,
					Stages:  sess.Stages(snap.Stages),
				})
				fmt.Fprintf(w, "event: stages\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func handleStart(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sessionFrom(r).StartStage(r.Context(), chi.URLParam(r, "stageID"))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleBuy(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sessionFrom(r).BuyStage(r.Context(), chi.URLParam(r, "stageID"))
		if err != nil {
			writeGameError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
