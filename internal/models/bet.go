package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus represents the settlement status of a bet
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusScored    BetStatus = "scored"
	BetStatusWinner    BetStatus = "winner"
	BetStatusNonWinner BetStatus = "non_winner"
)

// Bet is a participant's paid selection for a round
type Bet struct {
	ID             string          `bson:"_id" json:"id"`
	ParticipantID  string          `bson:"participantId" json:"participantId"`
	CollaboratorID *string         `bson:"collaboratorId,omitempty" json:"collaboratorId,omitempty"` // seller who placed the bet, if any
	RoundID        string          `bson:"roundId" json:"roundId"`
	Selection      []string        `bson:"selection" json:"selection"`
	TimeSlot       string          `bson:"timeSlot,omitempty" json:"timeSlot,omitempty"` // fixed digit games only
	Amount         decimal.Decimal `bson:"amount" json:"amount"`
	Status         BetStatus       `bson:"status" json:"status"`
	Score          *int            `bson:"score,omitempty" json:"score,omitempty"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Collaborator returns the collaborator id or "" when the bet has none
func (b *Bet) Collaborator() string {
	if b.CollaboratorID == nil {
		return ""
	}
	return *b.CollaboratorID
}

// BetUpdate is the status/score pair written to a bet by settlement
type BetUpdate struct {
	BetID  string    `bson:"betId" json:"betId"`
	Status BetStatus `bson:"status" json:"status"`
	Score  int       `bson:"score" json:"score"`
}
