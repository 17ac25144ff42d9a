package game

import (
	"errors"
	"fmt"
)

// Recoverable player-facing errors. None of them leave state mutated.
var (
	ErrStageNotFound     = errors.New("stage not found")
	ErrStageLocked       = errors.New("stage is locked")
	ErrStageEmpty        = errors.New("stage has no actors")
	ErrPlayLimitReached  = errors.New("daily play limit reached for stage")
	ErrInsufficientFunds = errors.New("insufficient coins")
	ErrAlreadyClaimed    = errors.New("daily reward already claimed today")
	ErrAdLimitReached    = errors.New("daily ad limit reached")
	ErrAdNotFound        = errors.New("ad not found")
	ErrAdNotFinished     = errors.New("ad still playing")
	ErrPlaysRemaining    = errors.New("stage still has plays left today")

	ErrNoRound            = errors.New("no active round")
	ErrRoundComplete      = errors.New("round already complete")
	ErrQuestionResolved   = errors.New("question already resolved")
	ErrQuestionPending    = errors.New("question not answered yet")
	ErrUnknownOption      = errors.New("option not offered")
	ErrUnknownPowerUp     = errors.New("unknown power-up")
	ErrPowerUpSpent       = errors.New("power-up already applied to this question")
	ErrNothingToEliminate = errors.New("no options left to eliminate")
)

// InsufficientFundsError reports how many coins a purchase needed.
type InsufficientFundsError struct {
	Need int
	Have int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient coins: need %d, have %d", e.Need, e.Have)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
