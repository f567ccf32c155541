package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// SettlementRepository implements repositories.SettlementRepository
type SettlementRepository struct {
	db *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository
func NewSettlementRepository(db *pgxpool.Pool) repositories.SettlementRepository {
	return &SettlementRepository{db: db}
}

// SaveBatch writes the whole batch in one transaction. Every insert is
// ON CONFLICT DO NOTHING so a repeated call is a no-op for existing rows.
func (r *SettlementRepository) SaveBatch(ctx context.Context, batch *models.SettlementBatch) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return translate(err, "begin settlement of round "+batch.RoundID)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	b := &pgx.Batch{}
	for _, w := range batch.Winners {
		b.Queue(`
			INSERT INTO winners (id, round_id, bet_id, participant_id, collaborator_id, score, category, amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			w.ID, w.RoundID, w.BetID, w.ParticipantID, w.CollaboratorID, w.Score, w.Category, w.Amount, w.CreatedAt)
	}
	for _, e := range batch.Ledger {
		b.Queue(`
			INSERT INTO ledger_entries (id, round_id, kind, beneficiary_id, amount, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.RoundID, e.Kind, e.BeneficiaryID, e.Amount, e.Status, e.CreatedAt)
	}
	for _, u := range batch.BetUpdates {
		b.Queue(`UPDATE bets SET status = $3, score = $4, updated_at = now() WHERE id = $1 AND round_id = $2`,
			u.BetID, batch.RoundID, u.Status, u.Score)
	}
	b.Queue(`
		INSERT INTO settlement_results (round_id, plan_digest, result, settled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (round_id) DO NOTHING`,
		batch.RoundID, batch.Result.PlanDigest, batch.Result, batch.Result.SettledAt)

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return translate(err, "write settlement of round "+batch.RoundID)
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(err, "commit settlement of round "+batch.RoundID)
	}
	return nil
}

// FindResult finds the stored settlement result of a round
func (r *SettlementRepository) FindResult(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	var res models.SettlementResult
	err := r.db.QueryRow(ctx, `SELECT result FROM settlement_results WHERE round_id = $1`, roundID).Scan(&res)
	if err != nil {
		return nil, translate(err, "find settlement of round "+roundID)
	}
	return &res, nil
}

// FindWinnersByRound finds the winner records of a round
func (r *SettlementRepository) FindWinnersByRound(ctx context.Context, roundID string) ([]*models.WinnerRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, round_id, bet_id, participant_id, collaborator_id, score, category, amount, created_at
		FROM winners WHERE round_id = $1 ORDER BY category, id`, roundID)
	if err != nil {
		return nil, translate(err, "find winners of round "+roundID)
	}
	defer rows.Close()

	winners := []*models.WinnerRecord{}
	for rows.Next() {
		var w models.WinnerRecord
		if err := rows.Scan(&w.ID, &w.RoundID, &w.BetID, &w.ParticipantID, &w.CollaboratorID, &w.Score,
			&w.Category, &w.Amount, &w.CreatedAt); err != nil {
			return nil, translate(err, "scan winner")
		}
		winners = append(winners, &w)
	}
	return winners, translate(rows.Err(), "find winners of round "+roundID)
}

// FindLedgerByRound finds the ledger entries of a round
func (r *SettlementRepository) FindLedgerByRound(ctx context.Context, roundID string) ([]*models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, round_id, kind, beneficiary_id, amount, status, created_at
		FROM ledger_entries WHERE round_id = $1 ORDER BY kind, id`, roundID)
	if err != nil {
		return nil, translate(err, "find ledger of round "+roundID)
	}
	defer rows.Close()

	entries := []*models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.RoundID, &e.Kind, &e.BeneficiaryID, &e.Amount, &e.Status, &e.CreatedAt); err != nil {
			return nil, translate(err, "scan ledger entry")
		}
		entries = append(entries, &e)
	}
	return entries, translate(rows.Err(), "find ledger of round "+roundID)
}
