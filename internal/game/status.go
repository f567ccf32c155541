package game

import (
	"fmt"
	"time"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// CanTransition checks a requested status change. Only open->closed and
// closed->settled are allowed.
func CanTransition(from, to models.RoundStatus) error {
	switch {
	case from == models.RoundStatusOpen && to == models.RoundStatusClosed:
		return nil
	case from == models.RoundStatusClosed && to == models.RoundStatusSettled:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
}

// Advance returns the status a round should be in at now.
//
// An open round closes once now reaches its end time. A closed round settles
// only when a settlement found a champion; time alone never settles it.
// The current status is returned when nothing applies.
func Advance(round *models.Round, now time.Time, championFound bool) (models.RoundStatus, error) {
	if round == nil {
		return "", fmt.Errorf("%w: round is required", models.ErrValidation)
	}
	switch round.Status {
	case models.RoundStatusOpen:
		if !round.EndTime.IsZero() && !now.Before(round.EndTime) {
			return models.RoundStatusClosed, nil
		}
		return models.RoundStatusOpen, nil
	case models.RoundStatusClosed:
		if championFound {
			return models.RoundStatusSettled, nil
		}
		return models.RoundStatusClosed, nil
	case models.RoundStatusSettled:
		return models.RoundStatusSettled, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, round.Status)
}
