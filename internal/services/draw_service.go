package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/events"
	"github.com/ArowuTest/poolgame-backend/internal/game"
	"github.com/ArowuTest/poolgame-backend/internal/metrics"
	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
	"github.com/ArowuTest/poolgame-backend/internal/settlement"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl records the draw of a round
type DrawServiceImpl struct {
	roundRepo repositories.RoundRepository
	drawRepo  repositories.DrawRepository
	publisher events.Publisher
	logger    log.FieldLogger
	now       Clock
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	roundRepo repositories.RoundRepository,
	drawRepo repositories.DrawRepository,
	publisher events.Publisher,
	logger log.FieldLogger,
	now Clock,
) *DrawServiceImpl {
	if now == nil {
		now = utcNow
	}
	return &DrawServiceImpl{
		roundRepo: roundRepo,
		drawRepo:  drawRepo,
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// RecordDraw validates values against the round and stores them as its draw.
// The round must be closed and must not have a draw yet. The round status is
// not changed.
func (s *DrawServiceImpl) RecordDraw(ctx context.Context, roundID string, values []string, timeSlot, description, recordedBy string) (*models.Draw, error) {
	round, err := s.roundRepo.FindByID(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "round "+roundID)
	}
	if round.Status != models.RoundStatusClosed {
		return nil, fmt.Errorf("%w: round %s is %s, draws are recorded on closed rounds", models.ErrInvalidState, roundID, round.Status)
	}

	existing, err := s.drawRepo.FindByRoundID(ctx, roundID)
	if err == nil && existing != nil {
		return nil, models.ErrAlreadyRecorded
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeErr(err, "check existing draw")
	}

	if err := game.ValidateDraw(round, values, timeSlot); err != nil {
		return nil, err
	}

	now := s.now()
	draw := &models.Draw{
		ID:          settlement.DrawID(roundID),
		RoundID:     roundID,
		Values:      trimAll(values),
		TimeSlot:    strings.TrimSpace(timeSlot),
		Description: strings.TrimSpace(description),
		RecordedBy:  recordedBy,
		DrawnAt:     now,
		CreatedAt:   now,
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, models.ErrAlreadyRecorded
		}
		return nil, storeErr(err, "create draw")
	}

	metrics.DrawRecorded()
	s.logger.WithFields(log.Fields{"roundId": roundID, "drawId": draw.ID, "recordedBy": recordedBy}).Info("draw recorded")

	if err := s.publisher.Publish(ctx, events.Event{
		Subject:    events.SubjectDrawRecorded,
		RoundID:    roundID,
		DrawID:     draw.ID,
		OccurredAt: now,
	}); err != nil {
		s.logger.WithError(err).WithField("roundId", roundID).Warn("failed to publish draw event")
	}
	return draw, nil
}

// GetDraw retrieves the draw of a round
func (s *DrawServiceImpl) GetDraw(ctx context.Context, roundID string) (*models.Draw, error) {
	draw, err := s.drawRepo.FindByRoundID(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "draw of round "+roundID)
	}
	return draw, nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
