package models

import (
	"time"
)

// Draw represents the recorded winning selection of a round.
// A round has at most one draw and it is immutable once created.
type Draw struct {
	ID          string    `bson:"_id" json:"id"`
	RoundID     string    `bson:"roundId" json:"roundId"`
	Values      []string  `bson:"values" json:"values"`
	TimeSlot    string    `bson:"timeSlot,omitempty" json:"timeSlot,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	RecordedBy  string    `bson:"recordedBy,omitempty" json:"recordedBy,omitempty"`
	DrawnAt     time.Time `bson:"drawnAt" json:"drawnAt"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
