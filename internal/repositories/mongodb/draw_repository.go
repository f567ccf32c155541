package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// Create creates the draw of a round. The unique index on roundId rejects a
// second draw even when two requests race past the service's lookup.
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	if draw.CreatedAt.IsZero() {
		draw.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, draw)
	return translate(err, "insert draw for round "+draw.RoundID)
}

// FindByRoundID finds the draw of a round
func (r *DrawRepository) FindByRoundID(ctx context.Context, roundID string) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"roundId": roundID}).Decode(&draw)
	if err != nil {
		return nil, translate(err, "find draw for round "+roundID)
	}
	return &draw, nil
}
