package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WinnerRecord is the payout owed to one winning bet in one category.
// It is created once per winning bet per settlement; the ID is derived from
// the round, bet and category so a retried run maps onto the same record.
type WinnerRecord struct {
	ID             string          `bson:"_id" json:"id"`
	RoundID        string          `bson:"roundId" json:"roundId"`
	BetID          string          `bson:"betId" json:"betId"`
	ParticipantID  string          `bson:"participantId" json:"participantId"`
	CollaboratorID string          `bson:"collaboratorId,omitempty" json:"collaboratorId,omitempty"`
	Score          int             `bson:"score" json:"score"`
	Category       Category        `bson:"category" json:"category"`
	Amount         decimal.Decimal `bson:"amount" json:"amount"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
}
