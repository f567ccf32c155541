package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// index on draws.roundId is what enforces one draw per round.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"draws": {
			{Keys: bson.D{{Key: "roundId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_round")},
		},
		"bets": {
			{Keys: bson.D{{Key: "roundId", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("round_bets")},
		},
		"winners": {
			{Keys: bson.D{{Key: "roundId", Value: 1}}, Options: options.Index().SetName("round_winners")},
		},
		"ledger_entries": {
			{Keys: bson.D{{Key: "roundId", Value: 1}}, Options: options.Index().SetName("round_ledger")},
		},
		"rounds": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endTime", Value: 1}}, Options: options.Index().SetName("status_end")},
		},
	}

	for collection, specs := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// NewStore builds the MongoDB repositories over db
func NewStore(db *mongo.Database, disconnect func(context.Context) error) *repositories.Store {
	return &repositories.Store{
		Rounds:      NewRoundRepository(db),
		Draws:       NewDrawRepository(db),
		Bets:        NewBetRepository(db),
		Settlements: NewSettlementRepository(db),
		Close:       disconnect,
	}
}
