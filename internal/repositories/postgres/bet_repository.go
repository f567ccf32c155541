package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// BetRepository implements repositories.BetRepository
type BetRepository struct {
	db *pgxpool.Pool
}

// NewBetRepository creates a new BetRepository
func NewBetRepository(db *pgxpool.Pool) repositories.BetRepository {
	return &BetRepository{db: db}
}

// FindByRoundID finds all bets of a round ordered by id
func (r *BetRepository) FindByRoundID(ctx context.Context, roundID string) ([]*models.Bet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, participant_id, collaborator_id, round_id, selection, time_slot, amount, status, score,
		       created_at, updated_at
		FROM bets WHERE round_id = $1 ORDER BY id`, roundID)
	if err != nil {
		return nil, translate(err, "find bets of round "+roundID)
	}
	defer rows.Close()

	bets := []*models.Bet{}
	for rows.Next() {
		var b models.Bet
		if err := rows.Scan(&b.ID, &b.ParticipantID, &b.CollaboratorID, &b.RoundID, &b.Selection, &b.TimeSlot,
			&b.Amount, &b.Status, &b.Score, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, translate(err, "scan bet")
		}
		bets = append(bets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "find bets of round "+roundID)
	}
	return bets, nil
}

// CreateMany inserts bets in one batch, skipping ids that already exist
func (r *BetRepository) CreateMany(ctx context.Context, bets []*models.Bet) (int, error) {
	batch := &pgx.Batch{}
	for _, b := range bets {
		batch.Queue(`
			INSERT INTO bets (id, participant_id, collaborator_id, round_id, selection, time_slot, amount, status,
			                  created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			ON CONFLICT (id) DO NOTHING`,
			b.ID, b.ParticipantID, b.CollaboratorID, b.RoundID, b.Selection, b.TimeSlot, b.Amount, b.Status, b.CreatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range bets {
		tag, err := results.Exec()
		if err != nil {
			return inserted, translate(err, "insert bets")
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
