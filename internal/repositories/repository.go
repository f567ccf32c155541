package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// Repository level errors. Implementations return these (possibly wrapped)
// so services do not depend on a driver's error types.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrConflict  = errors.New("conditional write did not match")
)

// RoundRepository defines the interface for round data operations
type RoundRepository interface {
	FindByID(ctx context.Context, id string) (*models.Round, error)
	// FindDue returns rounds in status whose end time is at or before endBefore
	FindDue(ctx context.Context, status models.RoundStatus, endBefore time.Time) ([]*models.Round, error)
	// FindUnprocessed returns closed rounds that have not been settled yet
	FindUnprocessed(ctx context.Context) ([]*models.Round, error)
	// UpdateStatus moves a round from one status to another. ErrConflict when
	// the stored status is not from.
	UpdateStatus(ctx context.Context, id string, from, to models.RoundStatus) error
	// UpdatePremiation replaces the premiation config of an open round
	UpdatePremiation(ctx context.Context, id string, cfg models.PremiationConfig) error

	// AcquireSettlement sets the in-progress marker if the round is closed,
	// unprocessed and has no live marker. ErrConflict otherwise.
	AcquireSettlement(ctx context.Context, id, token string, now, leaseUntil time.Time) error
	// CompleteSettlement is the final settlement write: processed flag,
	// status and marker state change together, guarded by token.
	CompleteSettlement(ctx context.Context, id, token string, status models.RoundStatus, now time.Time) error
	// ReleaseSettlement clears a marker held by token after a failed run
	ReleaseSettlement(ctx context.Context, id, token string) error
}

// DrawRepository defines the interface for draw data operations
type DrawRepository interface {
	// Create inserts the draw of a round. ErrDuplicate when the round has one.
	Create(ctx context.Context, draw *models.Draw) error
	FindByRoundID(ctx context.Context, roundID string) (*models.Draw, error)
}

// BetRepository defines the interface for bet data operations
type BetRepository interface {
	FindByRoundID(ctx context.Context, roundID string) ([]*models.Bet, error)
	// CreateMany inserts bets, skipping ids that already exist
	CreateMany(ctx context.Context, bets []*models.Bet) (int, error)
}

// SettlementRepository persists settlement output
type SettlementRepository interface {
	// SaveBatch writes every record of the batch. Records are keyed by their
	// deterministic ids and inserted only if absent, so the call is safe to
	// repeat after a partial failure.
	SaveBatch(ctx context.Context, batch *models.SettlementBatch) error
	FindResult(ctx context.Context, roundID string) (*models.SettlementResult, error)
	FindWinnersByRound(ctx context.Context, roundID string) ([]*models.WinnerRecord, error)
	FindLedgerByRound(ctx context.Context, roundID string) ([]*models.LedgerEntry, error)
}

// Store bundles the repositories of one backend
type Store struct {
	Rounds      RoundRepository
	Draws       DrawRepository
	Bets        BetRepository
	Settlements SettlementRepository
	// Close releases the backend's connections
	Close func(ctx context.Context) error
}
