package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameKind identifies how selections are validated and scored
type GameKind string

const (
	GameKindNumberSet   GameKind = "number_set"   // e.g. pick 10 out of 00-99, scored by matches
	GameKindFixedDigits GameKind = "fixed_digits" // e.g. a digit pair plus a time slot, exact match only
	GameKindSymbolSet   GameKind = "symbol_set"   // e.g. animal groups, scored by matches
)

// Valid reports whether k is one of the supported game kinds
func (k GameKind) Valid() bool {
	switch k {
	case GameKindNumberSet, GameKindFixedDigits, GameKindSymbolSet:
		return true
	}
	return false
}

// RoundStatus represents the lifecycle state of a round
type RoundStatus string

const (
	RoundStatusOpen    RoundStatus = "open"    // accepting bets
	RoundStatusClosed  RoundStatus = "closed"  // fechado: no more bets, waiting for draw/settlement
	RoundStatusSettled RoundStatus = "settled" // encerrado: champion paid, closed permanently
)

// SettlementState is the state of the round-scoped settlement marker
type SettlementState string

const (
	SettlementStateInProgress SettlementState = "in_progress"
	SettlementStateDone       SettlementState = "done"
)

// SettlementMarker guards a round against concurrent settlement runs.
// Only the caller holding Token may write the final status.
type SettlementMarker struct {
	State      SettlementState `bson:"state" json:"state"`
	Token      string          `bson:"token" json:"-"`
	StartedAt  time.Time       `bson:"startedAt" json:"startedAt"`
	LeaseUntil time.Time       `bson:"leaseUntil" json:"leaseUntil"`
	FinishedAt time.Time       `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}

// Live reports whether an in-progress marker still holds its lease at now
func (m *SettlementMarker) Live(now time.Time) bool {
	return m != nil && m.State == SettlementStateInProgress && now.Before(m.LeaseUntil)
}

// Round represents one instance of the draw game
type Round struct {
	ID            string            `bson:"_id" json:"id"`
	Name          string            `bson:"name" json:"name"`
	Kind          GameKind          `bson:"kind" json:"kind"`
	Status        RoundStatus       `bson:"status" json:"status"`
	MinSelection  int               `bson:"minSelection" json:"minSelection"`
	MaxSelection  int               `bson:"maxSelection" json:"maxSelection"`
	DrawSize      int               `bson:"drawSize" json:"drawSize"`                         // number of values drawn, 0 = not enforced
	DigitCount    int               `bson:"digitCount,omitempty" json:"digitCount,omitempty"` // fixed digit games only
	Symbols       []string          `bson:"symbols,omitempty" json:"symbols,omitempty"`       // symbol games, empty = DefaultSymbols
	ChampionScore int               `bson:"championScore,omitempty" json:"championScore,omitempty"`
	TicketPrice   decimal.Decimal   `bson:"ticketPrice" json:"ticketPrice"`
	StartTime     time.Time         `bson:"startTime" json:"startTime"`
	EndTime       time.Time         `bson:"endTime" json:"endTime"`
	Premiation    PremiationConfig  `bson:"premiation" json:"premiation"`
	Processed     bool              `bson:"processed" json:"processed"`
	Settlement    *SettlementMarker `bson:"settlement,omitempty" json:"settlement,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// SymbolSet returns the alphabet accepted by a symbol game
func (r *Round) SymbolSet() []string {
	if len(r.Symbols) > 0 {
		return r.Symbols
	}
	return DefaultSymbols
}

// DefaultSymbols is the classic set of 25 animal groups
var DefaultSymbols = []string{
	"avestruz", "aguia", "burro", "borboleta", "cachorro",
	"cabra", "carneiro", "camelo", "cobra", "coelho",
	"cavalo", "elefante", "galo", "gato", "jacare",
	"leao", "macaco", "porco", "pavao", "peru",
	"touro", "tigre", "urso", "veado", "vaca",
}
