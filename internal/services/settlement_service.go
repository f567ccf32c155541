package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/cache"
	"github.com/ArowuTest/poolgame-backend/internal/events"
	"github.com/ArowuTest/poolgame-backend/internal/metrics"
	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
	"github.com/ArowuTest/poolgame-backend/internal/settlement"
)

// Compile-time check to ensure SettlementServiceImpl implements SettlementService
var _ SettlementService = (*SettlementServiceImpl)(nil)

// releaseTimeout bounds the marker release after a failed run
const releaseTimeout = 5 * time.Second

// SettlementServiceImpl settles closed rounds.
//
// A run computes the whole settlement in memory, takes the round's
// in-progress marker, writes the batch of records and finally flips the
// round's processed flag and status in one conditional write. Every record in
// the batch has a deterministic id, so a run that fails after a partial write
// can be repeated and converges on the same records.
type SettlementServiceImpl struct {
	store     *repositories.Store
	cache     cache.ResultCache
	publisher events.Publisher
	logger    log.FieldLogger
	lease     time.Duration
	now       Clock
}

// NewSettlementService creates a new SettlementServiceImpl
func NewSettlementService(
	store *repositories.Store,
	resultCache cache.ResultCache,
	publisher events.Publisher,
	logger log.FieldLogger,
	lease time.Duration,
	now Clock,
) *SettlementServiceImpl {
	if now == nil {
		now = utcNow
	}
	if resultCache == nil {
		resultCache = cache.NoopResultCache{}
	}
	return &SettlementServiceImpl{
		store:     store,
		cache:     resultCache,
		publisher: publisher,
		logger:    logger,
		lease:     lease,
		now:       now,
	}
}

// Settle settles a closed round.
//
// A round that was already processed returns its stored result together with
// models.ErrAlreadyProcessed. A round whose marker is held by another live run
// returns models.ErrSettlementInProgress.
func (s *SettlementServiceImpl) Settle(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	start := time.Now()
	res, err := s.settle(ctx, roundID)

	winners := 0
	if err == nil && res != nil {
		winners = len(res.Winners())
	}
	metrics.ObserveSettlement(outcome(res, err), winners, time.Since(start))
	return res, err
}

func (s *SettlementServiceImpl) settle(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	logger := s.logger.WithField("roundId", roundID)
	now := s.now()

	round, err := s.store.Rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "round "+roundID)
	}
	if round.Processed {
		return s.processedResult(ctx, roundID)
	}
	if round.Settlement.Live(now) {
		return nil, models.ErrSettlementInProgress
	}
	if round.Status != models.RoundStatusClosed {
		return nil, fmt.Errorf("%w: round %s is %s, only closed rounds settle", models.ErrInvalidState, roundID, round.Status)
	}

	draw, err := s.store.Draws.FindByRoundID(ctx, roundID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrDrawMissing
	}
	if err != nil {
		return nil, storeErr(err, "draw of round "+roundID)
	}

	bets, err := s.store.Bets.FindByRoundID(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "bets of round "+roundID)
	}
	if len(bets) == 0 {
		return nil, models.ErrNoBets
	}

	batch, err := settlement.BuildPlan(round, draw, bets, now)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.store.Rounds.AcquireSettlement(ctx, roundID, token, now, now.Add(s.lease)); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return s.lostRace(ctx, roundID)
		}
		return nil, storeErr(err, "acquire settlement marker")
	}
	logger = logger.WithField("planDigest", batch.Result.PlanDigest)
	logger.Info("settlement marker acquired")

	if err := s.store.Settlements.SaveBatch(ctx, batch); err != nil {
		s.release(roundID, token, logger)
		return nil, storeErr(err, "save settlement batch")
	}
	if err := s.store.Rounds.CompleteSettlement(ctx, roundID, token, batch.Result.NewRoundStatus, now); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// the lease expired and another run took the marker over
			return s.lostRace(ctx, roundID)
		}
		s.release(roundID, token, logger)
		return nil, storeErr(err, "complete settlement")
	}

	res, err := s.store.Settlements.FindResult(ctx, roundID)
	if err != nil {
		logger.WithError(err).Warn("stored result unreadable, returning computed result")
		res = &batch.Result
	}

	logger.WithFields(log.Fields{
		"status":        res.NewRoundStatus,
		"championFound": res.ChampionFound,
		"winners":       len(res.Winners()),
		"total":         res.TotalCollected.StringFixed(2),
	}).Info("round settled")

	if err := s.cache.Set(ctx, res); err != nil {
		logger.WithError(err).Warn("failed to cache settlement result")
	}
	total := res.TotalCollected
	if err := s.publisher.Publish(ctx, events.Event{
		Subject:        events.SubjectRoundSettled,
		RoundID:        roundID,
		Status:         res.NewRoundStatus,
		ChampionFound:  res.ChampionFound,
		TotalCollected: &total,
		PlanDigest:     res.PlanDigest,
		OccurredAt:     now,
	}); err != nil {
		logger.WithError(err).Warn("failed to publish settlement event")
	}
	return res, nil
}

// processedResult returns the stored result of a processed round
func (s *SettlementServiceImpl) processedResult(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	res, err := s.GetResult(ctx, roundID)
	if err != nil {
		return nil, err
	}
	return res, models.ErrAlreadyProcessed
}

// lostRace resolves a failed conditional write on the marker
func (s *SettlementServiceImpl) lostRace(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	round, err := s.store.Rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "round "+roundID)
	}
	if round.Processed {
		return s.processedResult(ctx, roundID)
	}
	if round.Status != models.RoundStatusClosed {
		return nil, fmt.Errorf("%w: round %s is %s, only closed rounds settle", models.ErrInvalidState, roundID, round.Status)
	}
	return nil, models.ErrSettlementInProgress
}

// release clears the marker so a retry does not wait for the lease. It runs
// on a fresh context since the request context may be the reason of failure.
func (s *SettlementServiceImpl) release(roundID, token string, logger log.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := s.store.Rounds.ReleaseSettlement(ctx, roundID, token); err != nil {
		logger.WithError(err).Warn("failed to release settlement marker, it expires with its lease")
	}
}

// SettlePending settles every closed, unprocessed round that has a draw.
// Rounds without a draw or bets are skipped. It returns the number of rounds
// settled by this call.
func (s *SettlementServiceImpl) SettlePending(ctx context.Context) (int, error) {
	rounds, err := s.store.Rounds.FindUnprocessed(ctx)
	if err != nil {
		return 0, storeErr(err, "find unprocessed rounds")
	}

	settled := 0
	var errs []error
	for _, round := range rounds {
		if err := ctx.Err(); err != nil {
			return settled, err
		}
		_, err := s.Settle(ctx, round.ID)
		switch {
		case err == nil:
			settled++
		case errors.Is(err, models.ErrDrawMissing), errors.Is(err, models.ErrNoBets), models.IsInformational(err):
			s.logger.WithField("roundId", round.ID).WithError(err).Debug("round skipped")
		default:
			s.logger.WithField("roundId", round.ID).WithError(err).Error("settlement failed")
			errs = append(errs, fmt.Errorf("round %s: %w", round.ID, err))
		}
	}
	return settled, errors.Join(errs...)
}

// GetResult retrieves the stored result of a settled round
func (s *SettlementServiceImpl) GetResult(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	if res, err := s.cache.Get(ctx, roundID); err == nil {
		return res, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WithError(err).WithField("roundId", roundID).Warn("settlement cache read failed")
	}

	res, err := s.store.Settlements.FindResult(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "settlement of round "+roundID)
	}
	if err := s.cache.Set(ctx, res); err != nil {
		s.logger.WithError(err).WithField("roundId", roundID).Warn("failed to cache settlement result")
	}
	return res, nil
}

// GetWinners retrieves the winner records of a round
func (s *SettlementServiceImpl) GetWinners(ctx context.Context, roundID string) ([]*models.WinnerRecord, error) {
	winners, err := s.store.Settlements.FindWinnersByRound(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "winners of round "+roundID)
	}
	return winners, nil
}

// GetLedger retrieves the ledger entries of a round
func (s *SettlementServiceImpl) GetLedger(ctx context.Context, roundID string) ([]*models.LedgerEntry, error) {
	entries, err := s.store.Settlements.FindLedgerByRound(ctx, roundID)
	if err != nil {
		return nil, storeErr(err, "ledger of round "+roundID)
	}
	return entries, nil
}

func outcome(res *models.SettlementResult, err error) string {
	switch {
	case err == nil && res != nil && !res.ChampionFound:
		return metrics.OutcomeRollover
	case err == nil:
		return metrics.OutcomeSettled
	case errors.Is(err, models.ErrAlreadyProcessed):
		return metrics.OutcomeAlreadyProcessed
	case errors.Is(err, models.ErrSettlementInProgress):
		return metrics.OutcomeInProgress
	case models.IsRetryable(err):
		return metrics.OutcomeFailed
	}
	return metrics.OutcomeRejected
}
