package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

const roundColumns = `id, name, kind, status, min_selection, max_selection, draw_size, digit_count,
	symbols, champion_score, ticket_price, start_time, end_time, premiation, processed,
	settlement_state, settlement_token, settlement_started_at, settlement_lease_until,
	settlement_finished_at, created_at, updated_at`

// RoundRepository implements repositories.RoundRepository
type RoundRepository struct {
	db *pgxpool.Pool
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(db *pgxpool.Pool) repositories.RoundRepository {
	return &RoundRepository{db: db}
}

func scanRound(row pgx.Row) (*models.Round, error) {
	var (
		r                               models.Round
		start, end                      *time.Time
		state, token                    *string
		startedAt, leaseUntil, finished *time.Time
	)
	err := row.Scan(
		&r.ID, &r.Name, &r.Kind, &r.Status, &r.MinSelection, &r.MaxSelection, &r.DrawSize, &r.DigitCount,
		&r.Symbols, &r.ChampionScore, &r.TicketPrice, &start, &end, &r.Premiation, &r.Processed,
		&state, &token, &startedAt, &leaseUntil, &finished, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if start != nil {
		r.StartTime = *start
	}
	if end != nil {
		r.EndTime = *end
	}
	if state != nil {
		m := &models.SettlementMarker{State: models.SettlementState(*state)}
		if token != nil {
			m.Token = *token
		}
		if startedAt != nil {
			m.StartedAt = *startedAt
		}
		if leaseUntil != nil {
			m.LeaseUntil = *leaseUntil
		}
		if finished != nil {
			m.FinishedAt = *finished
		}
		r.Settlement = m
	}
	return &r, nil
}

// FindByID finds a round by ID
func (r *RoundRepository) FindByID(ctx context.Context, id string) (*models.Round, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)
	round, err := scanRound(row)
	if err != nil {
		return nil, translate(err, "find round "+id)
	}
	return round, nil
}

// FindDue finds rounds in status whose end time has passed
func (r *RoundRepository) FindDue(ctx context.Context, status models.RoundStatus, endBefore time.Time) ([]*models.Round, error) {
	return r.query(ctx, `SELECT `+roundColumns+` FROM rounds
		WHERE status = $1 AND end_time <= $2 ORDER BY end_time`, status, endBefore)
}

// FindUnprocessed finds closed rounds that were not settled yet
func (r *RoundRepository) FindUnprocessed(ctx context.Context) ([]*models.Round, error) {
	return r.query(ctx, `SELECT `+roundColumns+` FROM rounds
		WHERE status = $1 AND NOT processed ORDER BY end_time`, models.RoundStatusClosed)
}

func (r *RoundRepository) query(ctx context.Context, sql string, args ...interface{}) ([]*models.Round, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "query rounds")
	}
	defer rows.Close()

	rounds := []*models.Round{}
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, translate(err, "scan round")
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "query rounds")
	}
	return rounds, nil
}

// UpdateStatus moves a round from one status to another
func (r *RoundRepository) UpdateStatus(ctx context.Context, id string, from, to models.RoundStatus) error {
	return r.conditional(ctx, id,
		`UPDATE rounds SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`,
		id, to, from)
}

// UpdatePremiation replaces the premiation config of an open round
func (r *RoundRepository) UpdatePremiation(ctx context.Context, id string, cfg models.PremiationConfig) error {
	return r.conditional(ctx, id,
		`UPDATE rounds SET premiation = $2, updated_at = now() WHERE id = $1 AND status = $3`,
		id, cfg, models.RoundStatusOpen)
}

// AcquireSettlement sets the in-progress marker with a compare-and-set on
// the marker columns. An expired lease can be taken over.
func (r *RoundRepository) AcquireSettlement(ctx context.Context, id, token string, now, leaseUntil time.Time) error {
	return r.conditional(ctx, id, `
		UPDATE rounds
		SET settlement_state = $2, settlement_token = $3, settlement_started_at = $4,
		    settlement_lease_until = $5, settlement_finished_at = NULL, updated_at = $4
		WHERE id = $1 AND status = $6 AND NOT processed
		  AND (settlement_state IS NULL OR (settlement_state = $2 AND settlement_lease_until <= $4))`,
		id, models.SettlementStateInProgress, token, now, leaseUntil, models.RoundStatusClosed)
}

// CompleteSettlement writes the processed flag and final status in one
// statement, only for the holder of token
func (r *RoundRepository) CompleteSettlement(ctx context.Context, id, token string, status models.RoundStatus, now time.Time) error {
	return r.conditional(ctx, id, `
		UPDATE rounds
		SET processed = TRUE, status = $3, settlement_state = $4, settlement_finished_at = $5, updated_at = $5
		WHERE id = $1 AND settlement_token = $2 AND NOT processed`,
		id, token, status, models.SettlementStateDone, now)
}

// ReleaseSettlement clears a marker held by token
func (r *RoundRepository) ReleaseSettlement(ctx context.Context, id, token string) error {
	return r.conditional(ctx, id, `
		UPDATE rounds
		SET settlement_state = NULL, settlement_token = NULL, settlement_started_at = NULL,
		    settlement_lease_until = NULL, updated_at = now()
		WHERE id = $1 AND settlement_token = $2 AND NOT processed`,
		id, token)
}

// conditional runs a guarded update and tells a missing round apart from a
// guard that did not match
func (r *RoundRepository) conditional(ctx context.Context, id, sql string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err, "update round "+id)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rounds WHERE id = $1)`, id).Scan(&exists); err != nil {
		return translate(err, "find round "+id)
	}
	if !exists {
		return translate(pgx.ErrNoRows, "round "+id)
	}
	return repositories.ErrConflict
}
