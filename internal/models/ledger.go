package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind distinguishes overhead postings
type LedgerKind string

const (
	LedgerKindCommission     LedgerKind = "collaborator_commission"
	LedgerKindAdministrative LedgerKind = "administrative"
	LedgerKindRollover       LedgerKind = "rollover" // unclaimed champion pool carried to a future round
)

// LedgerStatus is the posting status of a ledger entry
type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "pending"
	LedgerStatusPosted  LedgerStatus = "posted"
)

// Beneficiaries used for entries that are not paid to a collaborator
const (
	BeneficiaryAdministration = "administration"
	BeneficiaryRollover       = "rollover"
)

// LedgerEntry is a posted financial record for a commission, administrative
// or rollover amount. One entry per beneficiary per round.
type LedgerEntry struct {
	ID            string          `bson:"_id" json:"id"`
	RoundID       string          `bson:"roundId" json:"roundId"`
	Kind          LedgerKind      `bson:"kind" json:"kind"`
	BeneficiaryID string          `bson:"beneficiaryId" json:"beneficiaryId"`
	Amount        decimal.Decimal `bson:"amount" json:"amount"`
	Status        LedgerStatus    `bson:"status" json:"status"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
}
