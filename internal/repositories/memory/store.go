// Package memory provides an in-memory implementation of the repositories
// for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// Operation names accepted by FailNext
const (
	OpSaveBatch          = "SaveBatch"
	OpCompleteSettlement = "CompleteSettlement"
	OpFindBets           = "FindBets"
)

// Store keeps every collection in mutex-guarded maps. Records are copied on
// the way in and out so callers never share memory with the store.
type Store struct {
	mu       sync.RWMutex
	rounds   map[string]models.Round
	bets     map[string]models.Bet
	draws    map[string]models.Draw // keyed by round id
	winners  map[string]models.WinnerRecord
	ledger   map[string]models.LedgerEntry
	results  map[string]models.SettlementResult
	failures map[string]error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		rounds:   make(map[string]models.Round),
		bets:     make(map[string]models.Bet),
		draws:    make(map[string]models.Draw),
		winners:  make(map[string]models.WinnerRecord),
		ledger:   make(map[string]models.LedgerEntry),
		results:  make(map[string]models.SettlementResult),
		failures: make(map[string]error),
	}
}

// Repositories returns the store as a repositories.Store
func (s *Store) Repositories() *repositories.Store {
	return &repositories.Store{
		Rounds:      &RoundRepository{s},
		Draws:       &DrawRepository{s},
		Bets:        &BetRepository{s},
		Settlements: &SettlementRepository{s},
		Close:       func(context.Context) error { return nil },
	}
}

// PutRound inserts or replaces a round
func (s *Store) PutRound(round *models.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[round.ID] = cloneRound(*round)
}

// FailNext makes the next call of op return err
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Counts reports how many winner and ledger records are stored for a round
func (s *Store) Counts(roundID string) (winners, ledger int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.winners {
		if w.RoundID == roundID {
			winners++
		}
	}
	for _, e := range s.ledger {
		if e.RoundID == roundID {
			ledger++
		}
	}
	return winners, ledger
}

// takeFailure must be called with the write lock held
func (s *Store) takeFailure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

// RoundRepository implements repositories.RoundRepository
type RoundRepository struct{ s *Store }

// FindByID finds a round by ID
func (r *RoundRepository) FindByID(ctx context.Context, id string) (*models.Round, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return nil, fmt.Errorf("round %s: %w", id, repositories.ErrNotFound)
	}
	out := cloneRound(round)
	return &out, nil
}

// FindDue finds rounds in status that ended at or before endBefore
func (r *RoundRepository) FindDue(ctx context.Context, status models.RoundStatus, endBefore time.Time) ([]*models.Round, error) {
	return r.find(func(round *models.Round) bool {
		return round.Status == status && !round.EndTime.After(endBefore)
	}), nil
}

// FindUnprocessed finds closed rounds without a completed settlement
func (r *RoundRepository) FindUnprocessed(ctx context.Context) ([]*models.Round, error) {
	return r.find(func(round *models.Round) bool {
		return round.Status == models.RoundStatusClosed && !round.Processed
	}), nil
}

func (r *RoundRepository) find(match func(*models.Round) bool) []*models.Round {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rounds := []*models.Round{}
	for _, round := range r.s.rounds {
		if match(&round) {
			out := cloneRound(round)
			rounds = append(rounds, &out)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].EndTime.Before(rounds[j].EndTime) })
	return rounds
}

// UpdateStatus moves a round from one status to another
func (r *RoundRepository) UpdateStatus(ctx context.Context, id string, from, to models.RoundStatus) error {
	return r.update(id, func(round *models.Round) error {
		if round.Status != from {
			return repositories.ErrConflict
		}
		round.Status = to
		return nil
	})
}

// UpdatePremiation replaces the premiation config of an open round
func (r *RoundRepository) UpdatePremiation(ctx context.Context, id string, cfg models.PremiationConfig) error {
	return r.update(id, func(round *models.Round) error {
		if round.Status != models.RoundStatusOpen {
			return repositories.ErrConflict
		}
		round.Premiation = clonePremiation(cfg)
		return nil
	})
}

// AcquireSettlement sets the in-progress marker
func (r *RoundRepository) AcquireSettlement(ctx context.Context, id, token string, now, leaseUntil time.Time) error {
	return r.update(id, func(round *models.Round) error {
		if round.Processed || round.Status != models.RoundStatusClosed || round.Settlement.Live(now) {
			return repositories.ErrConflict
		}
		round.Settlement = &models.SettlementMarker{
			State:      models.SettlementStateInProgress,
			Token:      token,
			StartedAt:  now,
			LeaseUntil: leaseUntil,
		}
		return nil
	})
}

// CompleteSettlement flips the processed flag and status
func (r *RoundRepository) CompleteSettlement(ctx context.Context, id, token string, status models.RoundStatus, now time.Time) error {
	r.s.mu.Lock()
	if err := r.s.takeFailure(OpCompleteSettlement); err != nil {
		r.s.mu.Unlock()
		return err
	}
	r.s.mu.Unlock()

	return r.update(id, func(round *models.Round) error {
		if round.Processed || round.Settlement == nil || round.Settlement.Token != token {
			return repositories.ErrConflict
		}
		round.Processed = true
		round.Status = status
		round.Settlement.State = models.SettlementStateDone
		round.Settlement.FinishedAt = now
		return nil
	})
}

// ReleaseSettlement clears a marker held by token
func (r *RoundRepository) ReleaseSettlement(ctx context.Context, id, token string) error {
	return r.update(id, func(round *models.Round) error {
		if round.Processed || round.Settlement == nil || round.Settlement.Token != token {
			return repositories.ErrConflict
		}
		round.Settlement = nil
		return nil
	})
}

func (r *RoundRepository) update(id string, apply func(*models.Round) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return fmt.Errorf("round %s: %w", id, repositories.ErrNotFound)
	}
	round = cloneRound(round)
	if err := apply(&round); err != nil {
		return err
	}
	round.UpdatedAt = time.Now().UTC()
	r.s.rounds[id] = round
	return nil
}

// DrawRepository implements repositories.DrawRepository
type DrawRepository struct{ s *Store }

// Create inserts the draw of a round
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.draws[draw.RoundID]; exists {
		return fmt.Errorf("draw for round %s: %w", draw.RoundID, repositories.ErrDuplicate)
	}
	if draw.CreatedAt.IsZero() {
		draw.CreatedAt = time.Now().UTC()
	}
	stored := *draw
	stored.Values = append([]string(nil), draw.Values...)
	r.s.draws[draw.RoundID] = stored
	return nil
}

// FindByRoundID finds the draw of a round
func (r *DrawRepository) FindByRoundID(ctx context.Context, roundID string) (*models.Draw, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	draw, ok := r.s.draws[roundID]
	if !ok {
		return nil, fmt.Errorf("draw for round %s: %w", roundID, repositories.ErrNotFound)
	}
	draw.Values = append([]string(nil), draw.Values...)
	return &draw, nil
}

// BetRepository implements repositories.BetRepository
type BetRepository struct{ s *Store }

// FindByRoundID finds all bets of a round ordered by id
func (r *BetRepository) FindByRoundID(ctx context.Context, roundID string) ([]*models.Bet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(OpFindBets); err != nil {
		return nil, err
	}
	bets := []*models.Bet{}
	for _, b := range r.s.bets {
		if b.RoundID == roundID {
			out := cloneBet(b)
			bets = append(bets, &out)
		}
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].ID < bets[j].ID })
	return bets, nil
}

// CreateMany inserts bets whose ids are not stored yet
func (r *BetRepository) CreateMany(ctx context.Context, bets []*models.Bet) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inserted := 0
	for _, b := range bets {
		if _, exists := r.s.bets[b.ID]; exists {
			continue
		}
		r.s.bets[b.ID] = cloneBet(*b)
		inserted++
	}
	return inserted, nil
}

// SettlementRepository implements repositories.SettlementRepository
type SettlementRepository struct{ s *Store }

// SaveBatch writes winners, ledger entries, bet updates and the result.
// Existing records are left untouched.
func (r *SettlementRepository) SaveBatch(ctx context.Context, batch *models.SettlementBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(OpSaveBatch); err != nil {
		return err
	}

	for _, w := range batch.Winners {
		if _, exists := r.s.winners[w.ID]; !exists {
			r.s.winners[w.ID] = w
		}
	}
	for _, e := range batch.Ledger {
		if _, exists := r.s.ledger[e.ID]; !exists {
			r.s.ledger[e.ID] = e
		}
	}
	for _, u := range batch.BetUpdates {
		b, ok := r.s.bets[u.BetID]
		if !ok {
			continue
		}
		score := u.Score
		b.Status = u.Status
		b.Score = &score
		b.UpdatedAt = time.Now().UTC()
		r.s.bets[u.BetID] = b
	}
	if _, exists := r.s.results[batch.RoundID]; !exists {
		r.s.results[batch.RoundID] = cloneResult(batch.Result)
	}
	return nil
}

// FindResult finds the stored settlement result of a round
func (r *SettlementRepository) FindResult(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.results[roundID]
	if !ok {
		return nil, fmt.Errorf("settlement of round %s: %w", roundID, repositories.ErrNotFound)
	}
	res = cloneResult(res)
	return &res, nil
}

// FindWinnersByRound finds the winner records of a round
func (r *SettlementRepository) FindWinnersByRound(ctx context.Context, roundID string) ([]*models.WinnerRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	winners := []*models.WinnerRecord{}
	for _, w := range r.s.winners {
		if w.RoundID == roundID {
			w := w
			winners = append(winners, &w)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].ID < winners[j].ID })
	return winners, nil
}

// FindLedgerByRound finds the ledger entries of a round
func (r *SettlementRepository) FindLedgerByRound(ctx context.Context, roundID string) ([]*models.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entries := []*models.LedgerEntry{}
	for _, e := range r.s.ledger {
		if e.RoundID == roundID {
			e := e
			entries = append(entries, &e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func cloneRound(r models.Round) models.Round {
	r.Symbols = append([]string(nil), r.Symbols...)
	r.Premiation = clonePremiation(r.Premiation)
	if r.Settlement != nil {
		m := *r.Settlement
		r.Settlement = &m
	}
	return r
}

func clonePremiation(c models.PremiationConfig) models.PremiationConfig {
	shares := make(map[models.Category]float64, len(c.Shares))
	for k, v := range c.Shares {
		shares[k] = v
	}
	c.Shares = shares
	c.PointTiers = append([]models.PointTier(nil), c.PointTiers...)
	return c
}

func cloneResult(r models.SettlementResult) models.SettlementResult {
	if r.PoolSplit != nil {
		split := make(map[models.Category]decimal.Decimal, len(r.PoolSplit))
		for k, v := range r.PoolSplit {
			split[k] = v
		}
		r.PoolSplit = split
	}
	if r.WinnersByCategory != nil {
		winners := make(map[models.Category][]models.WinnerRecord, len(r.WinnersByCategory))
		for k, v := range r.WinnersByCategory {
			winners[k] = append([]models.WinnerRecord(nil), v...)
		}
		r.WinnersByCategory = winners
	}
	if r.LedgerEntries != nil {
		r.LedgerEntries = append([]models.LedgerEntry(nil), r.LedgerEntries...)
	}
	return r
}

func cloneBet(b models.Bet) models.Bet {
	b.Selection = append([]string(nil), b.Selection...)
	if b.CollaboratorID != nil {
		c := *b.CollaboratorID
		b.CollaboratorID = &c
	}
	if b.Score != nil {
		s := *b.Score
		b.Score = &s
	}
	return b
}
