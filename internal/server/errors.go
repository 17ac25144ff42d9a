package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FundsErrorResponse is returned with 402 when coins do not cover a purchase.
type FundsErrorResponse struct {
	Error string `json:"error"`
	Need  int    `json:"need"`
	Have  int    `json:"have"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{game.ErrStageNotFound, http.StatusNotFound},
	{game.ErrAdNotFound, http.StatusNotFound},
	{game.ErrStageLocked, http.StatusLocked},
	{game.ErrInsufficientFunds, http.StatusPaymentRequired},
	{game.ErrPlayLimitReached, http.StatusTooManyRequests},
	{game.ErrAdLimitReached, http.StatusTooManyRequests},
	{game.ErrAlreadyClaimed, http.StatusConflict},
	{game.ErrQuestionResolved, http.StatusConflict},
	{game.ErrPowerUpSpent, http.StatusConflict},
	{game.ErrAdNotFinished, http.StatusConflict},
	{game.ErrPlaysRemaining, http.StatusConflict},
	{game.ErrNoRound, http.StatusUnprocessableEntity},
	{game.ErrRoundComplete, http.StatusUnprocessableEntity},
	{game.ErrQuestionPending, http.StatusUnprocessableEntity},
	{game.ErrStageEmpty, http.StatusUnprocessableEntity},
	{game.ErrNothingToEliminate, http.StatusUnprocessableEntity},
	{game.ErrUnknownOption, http.StatusBadRequest},
	{game.ErrUnknownPowerUp, http.StatusBadRequest},
	{game.ErrUnknownAdPurpose, http.StatusBadRequest},
	{catalog.ErrInvalidStage, http.StatusBadRequest},
}

func statusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeGameError maps domain errors to responses. Anything unmapped is
// logged and reported as an internal error.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}

	var funds *game.InsufficientFundsError
	if errors.As(err, &funds) {
		writeJSON(w, status, FundsErrorResponse{Error: err.Error(), Need: funds.Need, Have: funds.Have})
		return
	}
	writeError(w, status, err.Error())
}
