package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// RoundRepository implements the repositories.RoundRepository interface
type RoundRepository struct {
	collection *mongo.Collection
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(db *mongo.Database) repositories.RoundRepository {
	return &RoundRepository{
		collection: db.Collection("rounds"),
	}
}

// FindByID finds a round by ID
func (r *RoundRepository) FindByID(ctx context.Context, id string) (*models.Round, error) {
	var round models.Round
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&round)
	if err != nil {
		return nil, translate(err, "find round "+id)
	}
	return &round, nil
}

// FindDue finds rounds in status whose end time has passed
func (r *RoundRepository) FindDue(ctx context.Context, status models.RoundStatus, endBefore time.Time) ([]*models.Round, error) {
	filter := bson.M{
		"status":  status,
		"endTime": bson.M{"$lte": endBefore},
	}
	return r.find(ctx, filter)
}

// FindUnprocessed finds closed rounds that were not settled yet
func (r *RoundRepository) FindUnprocessed(ctx context.Context) ([]*models.Round, error) {
	filter := bson.M{
		"status":    models.RoundStatusClosed,
		"processed": bson.M{"$ne": true},
	}
	return r.find(ctx, filter)
}

func (r *RoundRepository) find(ctx context.Context, filter bson.M) ([]*models.Round, error) {
	opts := options.Find().SetSort(bson.M{"endTime": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "find rounds")
	}
	defer cursor.Close(ctx)

	var rounds []*models.Round
	if err := cursor.All(ctx, &rounds); err != nil {
		return nil, translate(err, "decode rounds")
	}
	if rounds == nil {
		rounds = []*models.Round{}
	}
	return rounds, nil
}

// UpdateStatus moves a round from one status to another
func (r *RoundRepository) UpdateStatus(ctx context.Context, id string, from, to models.RoundStatus) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// UpdatePremiation replaces the premiation config of an open round
func (r *RoundRepository) UpdatePremiation(ctx context.Context, id string, cfg models.PremiationConfig) error {
	filter := bson.M{"_id": id, "status": models.RoundStatusOpen}
	update := bson.M{"$set": bson.M{"premiation": cfg, "updatedAt": time.Now().UTC()}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// AcquireSettlement sets the in-progress marker with a compare-and-set on
// the marker state. An expired lease can be taken over.
func (r *RoundRepository) AcquireSettlement(ctx context.Context, id, token string, now, leaseUntil time.Time) error {
	filter := bson.M{
		"_id":       id,
		"status":    models.RoundStatusClosed,
		"processed": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"settlement": nil},
			bson.M{
				"settlement.state":      models.SettlementStateInProgress,
				"settlement.leaseUntil": bson.M{"$lte": now},
			},
		},
	}
	marker := models.SettlementMarker{
		State:      models.SettlementStateInProgress,
		Token:      token,
		StartedAt:  now,
		LeaseUntil: leaseUntil,
	}
	update := bson.M{"$set": bson.M{"settlement": marker, "updatedAt": now}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// CompleteSettlement writes the processed flag and final status in one
// update, only for the holder of token
func (r *RoundRepository) CompleteSettlement(ctx context.Context, id, token string, status models.RoundStatus, now time.Time) error {
	filter := bson.M{
		"_id":              id,
		"processed":        bson.M{"$ne": true},
		"settlement.token": token,
	}
	update := bson.M{"$set": bson.M{
		"processed":             true,
		"status":                status,
		"settlement.state":      models.SettlementStateDone,
		"settlement.finishedAt": now,
		"updatedAt":             now,
	}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// ReleaseSettlement removes a marker held by token
func (r *RoundRepository) ReleaseSettlement(ctx context.Context, id, token string) error {
	filter := bson.M{
		"_id":              id,
		"processed":        bson.M{"$ne": true},
		"settlement.token": token,
	}
	update := bson.M{
		"$unset": bson.M{"settlement": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// conditionalUpdate runs a filtered update and tells a missing round apart
// from a filter that did not match
func (r *RoundRepository) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "update round "+id)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "count round "+id)
	}
	if count == 0 {
		return translate(mongo.ErrNoDocuments, "round "+id)
	}
	return repositories.ErrConflict
}
