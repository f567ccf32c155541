package models

import (
	"errors"
	"fmt"
)

// Error classes surfaced to callers. Wrap them with fmt.Errorf("%w: ...")
// and match with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrInvalidState         = errors.New("invalid state")
	ErrNotFound             = errors.New("not found")
	ErrConfigInvalid        = errors.New("premiation config invalid")
	ErrAlreadyProcessed     = errors.New("round already processed")
	ErrSettlementInProgress = errors.New("settlement in progress")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// Specific failures, each belonging to one of the classes above.
var (
	ErrAlreadyRecorded   = fmt.Errorf("%w: draw already recorded", ErrInvalidState)
	ErrDrawMissing       = fmt.Errorf("%w: draw missing", ErrNotFound)
	ErrNoBets            = fmt.Errorf("%w: no bets to settle", ErrInvalidState)
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrInvalidState)
)

// IsRetryable reports whether the caller may retry the failed operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsInformational reports whether err is an idempotency outcome the caller
// may treat as success
func IsInformational(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrSettlementInProgress)
}
