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

// SettlementRepository implements the repositories.SettlementRepository
// interface over the winners, ledger_entries, bets and settlement_results
// collections
type SettlementRepository struct {
	winners *mongo.Collection
	ledger  *mongo.Collection
	bets    *mongo.Collection
	results *mongo.Collection
}

// NewSettlementRepository creates a new SettlementRepository
func NewSettlementRepository(db *mongo.Database) repositories.SettlementRepository {
	return &SettlementRepository{
		winners: db.Collection("winners"),
		ledger:  db.Collection("ledger_entries"),
		bets:    db.Collection("bets"),
		results: db.Collection("settlement_results"),
	}
}

// SaveBatch writes a settlement batch. Winners, ledger entries and the
// result are inserted by their deterministic ids with duplicates ignored;
// bet updates are plain $set writes. Repeating the call after a partial
// failure completes the batch without duplicating anything.
func (r *SettlementRepository) SaveBatch(ctx context.Context, batch *models.SettlementBatch) error {
	unordered := options.InsertMany().SetOrdered(false)

	if len(batch.Winners) > 0 {
		docs := make([]interface{}, len(batch.Winners))
		for i := range batch.Winners {
			docs[i] = batch.Winners[i]
		}
		if _, err := r.winners.InsertMany(ctx, docs, unordered); ignoreDuplicates(err) != nil {
			return translate(err, "insert winners of round "+batch.RoundID)
		}
	}

	if len(batch.Ledger) > 0 {
		docs := make([]interface{}, len(batch.Ledger))
		for i := range batch.Ledger {
			docs[i] = batch.Ledger[i]
		}
		if _, err := r.ledger.InsertMany(ctx, docs, unordered); ignoreDuplicates(err) != nil {
			return translate(err, "insert ledger of round "+batch.RoundID)
		}
	}

	if len(batch.BetUpdates) > 0 {
		now := time.Now().UTC()
		writes := make([]mongo.WriteModel, 0, len(batch.BetUpdates))
		for _, u := range batch.BetUpdates {
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": u.BetID, "roundId": batch.RoundID}).
				SetUpdate(bson.M{"$set": bson.M{"status": u.Status, "score": u.Score, "updatedAt": now}}))
		}
		if _, err := r.bets.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return translate(err, "update bets of round "+batch.RoundID)
		}
	}

	if _, err := r.results.InsertOne(ctx, batch.Result); ignoreDuplicates(err) != nil {
		return translate(err, "insert settlement result of round "+batch.RoundID)
	}
	return nil
}

// FindResult finds the stored settlement result of a round
func (r *SettlementRepository) FindResult(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	var res models.SettlementResult
	if err := r.results.FindOne(ctx, bson.M{"_id": roundID}).Decode(&res); err != nil {
		return nil, translate(err, "find settlement of round "+roundID)
	}
	return &res, nil
}

// FindWinnersByRound finds the winner records of a round
func (r *SettlementRepository) FindWinnersByRound(ctx context.Context, roundID string) ([]*models.WinnerRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.winners.Find(ctx, bson.M{"roundId": roundID}, opts)
	if err != nil {
		return nil, translate(err, "find winners of round "+roundID)
	}
	defer cursor.Close(ctx)

	var winners []*models.WinnerRecord
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, translate(err, "decode winners")
	}
	if winners == nil {
		winners = []*models.WinnerRecord{}
	}
	return winners, nil
}

// FindLedgerByRound finds the ledger entries of a round
func (r *SettlementRepository) FindLedgerByRound(ctx context.Context, roundID string) ([]*models.LedgerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.ledger.Find(ctx, bson.M{"roundId": roundID}, opts)
	if err != nil {
		return nil, translate(err, "find ledger of round "+roundID)
	}
	defer cursor.Close(ctx)

	var entries []*models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, translate(err, "decode ledger")
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	return entries, nil
}
