// Package postgres implements the repositories on PostgreSQL with pgx. The
// settlement batch is written in a single transaction.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables if they do not exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return translate(err, "apply schema")
	}
	return nil
}

// NewStore builds the PostgreSQL repositories over pool
func NewStore(pool *pgxpool.Pool) *repositories.Store {
	return &repositories.Store{
		Rounds:      NewRoundRepository(pool),
		Draws:       NewDrawRepository(pool),
		Bets:        NewBetRepository(pool),
		Settlements: NewSettlementRepository(pool),
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

// translate maps pgx errors onto repository and model errors
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"),
			strings.HasPrefix(pgErr.Code, "57P"), pgErr.Code == "40001", pgErr.Code == "40P01":
			return fmt.Errorf("%w: %s: %s", models.ErrStoreUnavailable, what, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", what, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
