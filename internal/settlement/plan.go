// Package settlement computes the full payout plan of a round in memory.
// The plan is deterministic: the same round, draw and bets always produce
// the same record ids, amounts and digest, so a retried run writes onto the
// records of an interrupted one instead of duplicating them.
package settlement

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"github.com/ArowuTest/poolgame-backend/internal/game"
	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// recordNamespace scopes the name-based ids of settlement records
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("poolgame/settlement"))

// WinnerID is the id of the winner record of a bet in a category
func WinnerID(roundID, betID string, cat models.Category) string {
	return uuid.NewSHA1(recordNamespace, []byte("winner/"+roundID+"/"+betID+"/"+string(cat))).String()
}

// LedgerID is the id of the ledger entry of a beneficiary
func LedgerID(roundID string, kind models.LedgerKind, beneficiaryID string) string {
	return uuid.NewSHA1(recordNamespace, []byte("ledger/"+roundID+"/"+string(kind)+"/"+beneficiaryID)).String()
}

// DrawID is the id of the single draw of a round
func DrawID(roundID string) string {
	return uuid.NewSHA1(recordNamespace, []byte("draw/"+roundID)).String()
}

// BuildPlan scores, classifies and splits a closed round and returns the
// batch of records a settlement writes. It performs no I/O.
//
// Unclaimed runner-up, last-place and point-tier pools, and the commission
// pool when no winning bet has a collaborator, go to the administrative
// entry. An unclaimed champion pool is posted as a pending rollover entry.
func BuildPlan(round *models.Round, draw *models.Draw, bets []*models.Bet, now time.Time) (*models.SettlementBatch, error) {
	if round == nil || draw == nil {
		return nil, fmt.Errorf("%w: round and draw are required", models.ErrValidation)
	}
	if len(bets) == 0 {
		return nil, models.ErrNoBets
	}
	if err := round.Premiation.Validate(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, b := range bets {
		if b.Amount.IsNegative() || !b.Amount.Equal(game.Round2(b.Amount)) {
			return nil, fmt.Errorf("%w: bet %s has invalid amount %s", models.ErrValidation, b.ID, b.Amount)
		}
		total = total.Add(b.Amount)
	}

	split, err := game.SplitPool(total, round.Premiation)
	if err != nil {
		return nil, err
	}
	split = game.Reconcile(split, total)

	scored := game.ScoreAll(round.Kind, bets, draw)
	groups, order, championCat := prizeGroups(round, draw, scored)

	p := &planner{
		round:   round,
		now:     now,
		winners: make(map[models.Category][]models.WinnerRecord),
		won:     make(map[string]bool),
	}
	admin := split[models.CategoryAdministrative]
	rollover := decimal.Zero
	championFound := false

	for _, cat := range order {
		members := groups[cat]
		pool := split[cat]
		if len(members) == 0 {
			if cat == championCat {
				rollover = rollover.Add(pool)
			} else {
				admin = admin.Add(pool)
			}
			continue
		}
		if cat == championCat {
			championFound = true
		}
		p.pay(cat, members, pool)
	}

	commission := split[models.CategoryCommission]
	collaborators := p.collaborators()
	if len(collaborators) == 0 {
		admin = admin.Add(commission)
	} else {
		for i, share := range game.SplitEqually(commission, len(collaborators)) {
			p.post(models.LedgerKindCommission, collaborators[i], share, models.LedgerStatusPosted)
		}
	}
	p.post(models.LedgerKindAdministrative, models.BeneficiaryAdministration, admin, models.LedgerStatusPosted)
	if rollover.IsPositive() {
		p.post(models.LedgerKindRollover, models.BeneficiaryRollover, rollover, models.LedgerStatusPending)
	}

	status, err := game.Advance(round, now, championFound)
	if err != nil {
		return nil, err
	}

	batch := &models.SettlementBatch{
		RoundID:    round.ID,
		Winners:    p.flatWinners(order),
		Ledger:     p.ledger,
		BetUpdates: betUpdates(scored, p.won),
		Result: models.SettlementResult{
			RoundID:           round.ID,
			TotalCollected:    total,
			PoolSplit:         split,
			WinnersByCategory: p.winners,
			LedgerEntries:     p.ledger,
			NewRoundStatus:    status,
			ChampionFound:     championFound,
			BetCount:          len(bets),
			SettledAt:         now,
		},
	}

	if paid := batch.Result.TotalPaid(); !paid.Equal(total) {
		return nil, fmt.Errorf("settlement plan pays %s of %s collected", paid.StringFixed(2), total.StringFixed(2))
	}
	batch.Result.PlanDigest = Digest(batch)
	return batch, nil
}

// prizeGroups classifies the scored bets by the round's premiation mode. It
// returns the groups, the order pools are paid in and the category that
// counts as the champion tier.
func prizeGroups(round *models.Round, draw *models.Draw, scored []game.ScoredBet) (map[models.Category][]game.ScoredBet, []models.Category, models.Category) {
	if round.Premiation.IsPoints() {
		groups := game.ClassifyByPoints(scored, round.Premiation.PointTiers)
		var order []models.Category
		for _, pt := range round.Premiation.SortedPointTiers() {
			order = append(order, models.PointCategory(pt.Points))
		}
		return groups, order, order[0]
	}

	tiers := game.Classify(scored, game.DefaultThresholds(round, draw))
	groups := make(map[models.Category][]game.ScoredBet, len(models.PrizeCategories))
	for _, cat := range models.PrizeCategories {
		groups[cat] = tiers.Get(cat)
	}
	return groups, models.PrizeCategories, models.CategoryChampion
}

type planner struct {
	round   *models.Round
	now     time.Time
	winners map[models.Category][]models.WinnerRecord
	ledger  []models.LedgerEntry
	won     map[string]bool
}

func (p *planner) pay(cat models.Category, members []game.ScoredBet, pool decimal.Decimal) {
	for i, share := range game.SplitEqually(pool, len(members)) {
		sb := members[i]
		p.winners[cat] = append(p.winners[cat], models.WinnerRecord{
			ID:             WinnerID(p.round.ID, sb.Bet.ID, cat),
			RoundID:        p.round.ID,
			BetID:          sb.Bet.ID,
			ParticipantID:  sb.Bet.ParticipantID,
			CollaboratorID: sb.Bet.Collaborator(),
			Score:          sb.Score,
			Category:       cat,
			Amount:         share,
			CreatedAt:      p.now,
		})
		p.won[sb.Bet.ID] = true
	}
}

func (p *planner) post(kind models.LedgerKind, beneficiary string, amount decimal.Decimal, status models.LedgerStatus) {
	p.ledger = append(p.ledger, models.LedgerEntry{
		ID:            LedgerID(p.round.ID, kind, beneficiary),
		RoundID:       p.round.ID,
		Kind:          kind,
		BeneficiaryID: beneficiary,
		Amount:        amount,
		Status:        status,
		CreatedAt:     p.now,
	})
}

// collaborators returns the distinct, sorted collaborator ids of winning bets
func (p *planner) collaborators() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ws := range p.winners {
		for _, w := range ws {
			if w.CollaboratorID != "" && !seen[w.CollaboratorID] {
				seen[w.CollaboratorID] = true
				out = append(out, w.CollaboratorID)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (p *planner) flatWinners(order []models.Category) []models.WinnerRecord {
	var out []models.WinnerRecord
	for _, cat := range order {
		out = append(out, p.winners[cat]...)
	}
	return out
}

func betUpdates(scored []game.ScoredBet, won map[string]bool) []models.BetUpdate {
	updates := make([]models.BetUpdate, 0, len(scored))
	for _, sb := range scored {
		status := models.BetStatusNonWinner
		if won[sb.Bet.ID] {
			status = models.BetStatusWinner
		}
		updates = append(updates, models.BetUpdate{BetID: sb.Bet.ID, Status: status, Score: sb.Score})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].BetID < updates[j].BetID })
	return updates
}

// Digest fingerprints the financial content of a batch. Timestamps are left
// out so a recomputed plan hashes the same as the stored one.
func Digest(batch *models.SettlementBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "round %s total %s status %s\n", batch.RoundID, batch.Result.TotalCollected.StringFixed(2), batch.Result.NewRoundStatus)

	cats := make([]string, 0, len(batch.Result.PoolSplit))
	for cat := range batch.Result.PoolSplit {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&b, "pool %s %s\n", cat, batch.Result.PoolSplit[models.Category(cat)].StringFixed(2))
	}
	for _, w := range batch.Winners {
		fmt.Fprintf(&b, "winner %s %s %s %d %s\n", w.ID, w.BetID, w.Category, w.Score, w.Amount.StringFixed(2))
	}
	for _, e := range batch.Ledger {
		fmt.Fprintf(&b, "ledger %s %s %s %s %s\n", e.ID, e.Kind, e.BeneficiaryID, e.Status, e.Amount.StringFixed(2))
	}
	for _, u := range batch.BetUpdates {
		fmt.Fprintf(&b, "bet %s %s %d\n", u.BetID, u.Status, u.Score)
	}

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
