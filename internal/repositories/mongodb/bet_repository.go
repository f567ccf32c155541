package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// BetRepository implements the repositories.BetRepository interface
type BetRepository struct {
	collection *mongo.Collection
}

// NewBetRepository creates a new BetRepository
func NewBetRepository(db *mongo.Database) repositories.BetRepository {
	return &BetRepository{
		collection: db.Collection("bets"),
	}
}

// FindByRoundID finds all bets of a round ordered by id
func (r *BetRepository) FindByRoundID(ctx context.Context, roundID string) ([]*models.Bet, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"roundId": roundID}, opts)
	if err != nil {
		return nil, translate(err, "find bets of round "+roundID)
	}
	defer cursor.Close(ctx)

	var bets []*models.Bet
	if err := cursor.All(ctx, &bets); err != nil {
		return nil, translate(err, "decode bets")
	}
	if bets == nil {
		bets = []*models.Bet{}
	}
	return bets, nil
}

// CreateMany inserts bets, skipping ids that already exist
func (r *BetRepository) CreateMany(ctx context.Context, bets []*models.Bet) (int, error) {
	if len(bets) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(bets))
	for i, b := range bets {
		docs[i] = b
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(bets), nil
	}
	if ignoreDuplicates(err) != nil {
		return 0, translate(err, "insert bets")
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		return len(bets) - len(bwe.WriteErrors), nil
	}
	return 0, nil
}
