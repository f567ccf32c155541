package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementResult is the outcome of settling a round. It is persisted once
// and served back for idempotent reads.
type SettlementResult struct {
	RoundID           string                       `bson:"_id" json:"roundId"`
	TotalCollected    decimal.Decimal              `bson:"totalCollected" json:"totalCollected"`
	PoolSplit         map[Category]decimal.Decimal `bson:"poolSplit" json:"poolSplit"`
	WinnersByCategory map[Category][]WinnerRecord  `bson:"winnersByCategory" json:"winnersByCategory"`
	LedgerEntries     []LedgerEntry                `bson:"ledgerEntries" json:"ledgerEntries"`
	NewRoundStatus    RoundStatus                  `bson:"newRoundStatus" json:"newRoundStatus"`
	ChampionFound     bool                         `bson:"championFound" json:"championFound"`
	BetCount          int                          `bson:"betCount" json:"betCount"`
	PlanDigest        string                       `bson:"planDigest" json:"planDigest"`
	SettledAt         time.Time                    `bson:"settledAt" json:"settledAt"`
}

// Winners flattens WinnersByCategory in category order
func (r *SettlementResult) Winners() []WinnerRecord {
	var out []WinnerRecord
	for _, cat := range Categories {
		out = append(out, r.WinnersByCategory[cat]...)
	}
	for cat, ws := range r.WinnersByCategory {
		if !cat.Valid() {
			out = append(out, ws...)
		}
	}
	return out
}

// TotalPaid sums every winner payout and ledger entry of the result
func (r *SettlementResult) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, w := range r.Winners() {
		total = total.Add(w.Amount)
	}
	for _, e := range r.LedgerEntries {
		total = total.Add(e.Amount)
	}
	return total
}

// SettlementBatch is everything a settlement run writes before the round
// marker is flipped. Every record carries a deterministic id.
type SettlementBatch struct {
	RoundID    string
	Winners    []WinnerRecord
	Ledger     []LedgerEntry
	BetUpdates []BetUpdate
	Result     SettlementResult
}
