package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/events"
	"github.com/ArowuTest/poolgame-backend/internal/game"
	"github.com/ArowuTest/poolgame-backend/internal/metrics"
	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// Compile-time check to ensure RoundServiceImpl implements RoundService
var _ RoundService = (*RoundServiceImpl)(nil)

// RoundServiceImpl handles round status and configuration writes
type RoundServiceImpl struct {
	roundRepo repositories.RoundRepository
	publisher events.Publisher
	logger    log.FieldLogger
	now       Clock
}

// NewRoundService creates a new RoundServiceImpl
func NewRoundService(roundRepo repositories.RoundRepository, publisher events.Publisher, logger log.FieldLogger, now Clock) *RoundServiceImpl {
	if now == nil {
		now = utcNow
	}
	return &RoundServiceImpl{
		roundRepo: roundRepo,
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// Status returns the stored round
func (s *RoundServiceImpl) Status(ctx context.Context, roundID string) (*models.Round, error) {
	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "round "+roundID)
	}
	return round, nil
}

// Close moves an open round to closed once its end time has passed. Closing
// an already closed round is a no-op; anything else is an invalid transition.
func (s *RoundServiceImpl) Close(ctx context.Context, roundID string) (models.RoundStatus, error) {
	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return "", storeErr(err, "round "+roundID)
	}
	if round.Status == models.RoundStatusClosed {
		return round.Status, nil
	}
	if err := game.CanTransition(round.Status, models.RoundStatusClosed); err != nil {
		return round.Status, err
	}

	now := s.now()
	next, err := game.Advance(round, now, false)
	if err != nil {
		return round.Status, err
	}
	if next != models.RoundStatusClosed {
		return round.Status, fmt.Errorf("%w: round %s ends at %s", models.ErrInvalidTransition, roundID, round.EndTime.Format(time.RFC3339))
	}

	if err := s.roundRepo.UpdateStatus(ctx, roundID, models.RoundStatusOpen, models.RoundStatusClosed); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// closed concurrently
			current, findErr := s.roundRepo.FindByID(ctx, roundID)
			if findErr == nil && current.Status == models.RoundStatusClosed {
				return current.Status, nil
			}
			return round.Status, fmt.Errorf("%w: round %s changed status concurrently", models.ErrInvalidState, roundID)
		}
		return round.Status, storeErr(err, "close round")
	}

	metrics.RoundClosed()
	s.logger.WithField("roundId", roundID).Info("round closed")
	if err := s.publisher.Publish(ctx, events.Event{
		Subject:    events.SubjectRoundClosed,
		RoundID:    roundID,
		Status:     models.RoundStatusClosed,
		OccurredAt: now,
	}); err != nil {
		s.logger.WithError(err).WithField("roundId", roundID).Warn("failed to publish close event")
	}
	return models.RoundStatusClosed, nil
}

// CloseDue closes every open round whose end time has passed and returns how
// many were closed
func (s *RoundServiceImpl) CloseDue(ctx context.Context) (int, error) {
	rounds, err := s.roundRepo.FindDue(ctx, models.RoundStatusOpen, s.now())
	if err != nil {
		return 0, storeErr(err, "find due rounds")
	}

	closed := 0
	var errs []error
	for _, round := range rounds {
		if _, err := s.Close(ctx, round.ID); err != nil {
			errs = append(errs, fmt.Errorf("round %s: %w", round.ID, err))
			continue
		}
		closed++
	}
	return closed, errors.Join(errs...)
}

// UpdatePremiation converts cfg from unit to fractions, validates it and
// stores it on an open round
func (s *RoundServiceImpl) UpdatePremiation(ctx context.Context, roundID string, cfg models.PremiationConfig, unit models.ShareUnit) (*models.PremiationConfig, error) {
	normalized, err := cfg.Normalize(unit)
	if err != nil {
		return nil, err
	}
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	if err := s.roundRepo.UpdatePremiation(ctx, roundID, normalized); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: premiation can only change while round %s is open", models.ErrInvalidState, roundID)
		}
		return nil, storeErr(err, "update premiation")
	}

	s.logger.WithFields(log.Fields{"roundId": roundID, "mode": normalized.Mode}).Info("premiation updated")
	return &normalized, nil
}
