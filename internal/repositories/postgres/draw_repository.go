package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// DrawRepository implements repositories.DrawRepository
type DrawRepository struct {
	db *pgxpool.Pool
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *pgxpool.Pool) repositories.DrawRepository {
	return &DrawRepository{db: db}
}

// Create inserts the draw of a round; the unique constraint on round_id
// turns a racing second insert into repositories.ErrDuplicate
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	if draw.CreatedAt.IsZero() {
		draw.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO draws (id, round_id, drawn_values, time_slot, description, recorded_by, drawn_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		draw.ID, draw.RoundID, draw.Values, draw.TimeSlot, draw.Description, draw.RecordedBy, draw.DrawnAt, draw.CreatedAt)
	return translate(err, "insert draw for round "+draw.RoundID)
}

// FindByRoundID finds the draw of a round
func (r *DrawRepository) FindByRoundID(ctx context.Context, roundID string) (*models.Draw, error) {
	var d models.Draw
	err := r.db.QueryRow(ctx, `
		SELECT id, round_id, drawn_values, time_slot, description, recorded_by, drawn_at, created_at
		FROM draws WHERE round_id = $1`, roundID).
		Scan(&d.ID, &d.RoundID, &d.Values, &d.TimeSlot, &d.Description, &d.RecordedBy, &d.DrawnAt, &d.CreatedAt)
	if err != nil {
		return nil, translate(err, "find draw for round "+roundID)
	}
	return &d, nil
}
