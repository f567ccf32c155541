package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/poolgame-backend/internal/cache"
	"github.com/ArowuTest/poolgame-backend/internal/events"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
	"github.com/ArowuTest/poolgame-backend/internal/repositories/memory"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fixture struct {
	mem      *memory.Store
	store    *repositories.Store
	recorder *events.Recorder
	cache    *cache.MemoryResultCache
}

func newFixture() *fixture {
	mem := memory.NewStore()
	return &fixture{
		mem:      mem,
		store:    mem.Repositories(),
		recorder: &events.Recorder{},
		cache:    cache.NewMemoryResultCache(),
	}
}

func (f *fixture) drawService() *DrawServiceImpl {
	return NewDrawService(f.store.Rounds, f.store.Draws, f.recorder, logging.Discard(), fixedClock)
}

func (f *fixture) settlementService() *SettlementServiceImpl {
	return NewSettlementService(f.store, f.cache, f.recorder, logging.Discard(), time.Minute, fixedClock)
}

func (f *fixture) roundService() *RoundServiceImpl {
	return NewRoundService(f.store.Rounds, f.recorder, logging.Discard(), fixedClock)
}

func fixedShares() models.PremiationConfig {
	return models.PremiationConfig{
		Mode: models.PremiationModeFixed,
		Shares: map[models.Category]float64{
			models.CategoryChampion:       0.5,
			models.CategoryRunnerUp:       0.2,
			models.CategoryLastPlace:      0.1,
			models.CategoryAdministrative: 0.1,
			models.CategoryCommission:     0.1,
		},
	}
}

func (f *fixture) putRound(id string, status models.RoundStatus) *models.Round {
	round := &models.Round{
		ID:           id,
		Name:         "Round " + id,
		Kind:         models.GameKindNumberSet,
		Status:       status,
		MinSelection: 3,
		MaxSelection: 3,
		DrawSize:     3,
		TicketPrice:  decimal.RequireFromString("30"),
		StartTime:    testNow.Add(-48 * time.Hour),
		EndTime:      testNow.Add(-time.Hour),
		Premiation:   fixedShares(),
	}
	f.mem.PutRound(round)
	return round
}

func strPtr(s string) *string { return &s }

func (f *fixture) putBets(t *testing.T, roundID string, bets ...*models.Bet) {
	t.Helper()
	for _, b := range bets {
		b.RoundID = roundID
	}
	n, err := f.store.Bets.CreateMany(context.Background(), bets)
	require.NoError(t, err)
	require.Equal(t, len(bets), n)
}

func newBet(id string, collaborator *string, amount string, selection ...string) *models.Bet {
	return &models.Bet{
		ID:             id,
		ParticipantID:  "p-" + id,
		CollaboratorID: collaborator,
		Selection:      selection,
		Amount:         decimal.RequireFromString(amount),
		Status:         models.BetStatusPending,
		CreatedAt:      testNow.Add(-2 * time.Hour),
	}
}

// putThreeBetRound seeds the closed three-bet round with draw 1,2,3 used by
// most settlement tests
func (f *fixture) putThreeBetRound(t *testing.T, id string) {
	t.Helper()
	f.putRound(id, models.RoundStatusClosed)
	f.putBets(t, id,
		newBet(id+"-A", strPtr("col-1"), "30", "1", "2", "3"),
		newBet(id+"-B", strPtr("col-2"), "30", "1", "5", "6"),
		newBet(id+"-C", nil, "30", "7", "8", "9"),
	)
	_, err := f.drawService().RecordDraw(context.Background(), id, []string{"1", "2", "3"}, "", "evening draw", "operator-1")
	require.NoError(t, err)
}
