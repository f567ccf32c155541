package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// DrawService defines the interface for draw-related operations
type DrawService interface {
	// RecordDraw stores the winning selection of a closed round
	RecordDraw(ctx context.Context, roundID string, values []string, timeSlot, description, recordedBy string) (*models.Draw, error)

	// GetDraw retrieves the draw of a round
	GetDraw(ctx context.Context, roundID string) (*models.Draw, error)
}

// SettlementService defines the interface for settlement operations
type SettlementService interface {
	// Settle scores, classifies and pays out a closed round exactly once
	Settle(ctx context.Context, roundID string) (*models.SettlementResult, error)

	// SettlePending settles every closed, unprocessed round that has a draw
	SettlePending(ctx context.Context) (int, error)

	// GetResult retrieves the stored result of a settled round
	GetResult(ctx context.Context, roundID string) (*models.SettlementResult, error)

	// GetWinners retrieves the winner records of a settled round
	GetWinners(ctx context.Context, roundID string) ([]*models.WinnerRecord, error)

	// GetLedger retrieves the ledger entries of a settled round
	GetLedger(ctx context.Context, roundID string) ([]*models.LedgerEntry, error)
}

// RoundService defines the interface for round lifecycle operations
type RoundService interface {
	// Status returns the stored round
	Status(ctx context.Context, roundID string) (*models.Round, error)

	// Close moves an open round past its end time to closed
	Close(ctx context.Context, roundID string) (models.RoundStatus, error)

	// CloseDue closes every open round whose end time has passed
	CloseDue(ctx context.Context) (int, error)

	// UpdatePremiation replaces the premiation config of an open round
	UpdatePremiation(ctx context.Context, roundID string, cfg models.PremiationConfig, unit models.ShareUnit) (*models.PremiationConfig, error)
}

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// storeErr maps repository errors onto the caller-facing error classes
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	case errors.Is(err, models.ErrStoreUnavailable):
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}
