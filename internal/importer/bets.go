// Package importer loads bets from CSV exports of the sales channels
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ArowuTest/poolgame-backend/internal/game"
	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

// Result summarises an import
type Result struct {
	TotalRows int      `json:"totalRows"`
	Parsed    int      `json:"parsed"`
	Inserted  int      `json:"inserted"`
	Errors    []string `json:"errors"`
}

// BetImporter parses bet rows and stores them for one round
type BetImporter struct {
	rounds repositories.RoundRepository
	bets   repositories.BetRepository
	now    func() time.Time
}

// NewBetImporter creates a new BetImporter
func NewBetImporter(rounds repositories.RoundRepository, bets repositories.BetRepository) *BetImporter {
	return &BetImporter{rounds: rounds, bets: bets, now: func() time.Time { return time.Now().UTC() }}
}

// Import reads r and inserts its bets into roundID. The round must be open.
// Rows whose id is already stored are skipped, so an export can be imported
// again after a partial failure.
func (i *BetImporter) Import(ctx context.Context, roundID string, r io.Reader) (*Result, error) {
	round, err := i.rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("round %s: %w", roundID, err)
	}
	if round.Status != models.RoundStatusOpen {
		return nil, fmt.Errorf("%w: round %s is %s, bets are imported into open rounds", models.ErrInvalidState, roundID, round.Status)
	}

	bets, result, err := Parse(r, round, i.now())
	if err != nil {
		return nil, err
	}
	if len(bets) == 0 {
		return result, nil
	}

	inserted, err := i.bets.CreateMany(ctx, bets)
	if err != nil {
		return result, fmt.Errorf("insert bets: %w", err)
	}
	result.Inserted = inserted
	return result, nil
}

// Parse reads bets for round from CSV. The header names the columns; rows
// that fail to parse are reported in the result and skipped.
func Parse(r io.Reader, round *models.Round, now time.Time) ([]*models.Bet, *Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	idIdx := findColumnIndex(header, []string{"id", "bet_id", "ticket"})
	participantIdx := findColumnIndex(header, []string{"participant_id", "participant", "player"})
	collaboratorIdx := findColumnIndex(header, []string{"collaborator_id", "collaborator", "seller"})
	selectionIdx := findColumnIndex(header, []string{"selection", "numbers", "symbols"})
	slotIdx := findColumnIndex(header, []string{"time_slot", "slot"})
	amountIdx := findColumnIndex(header, []string{"amount", "value", "price"})

	for name, idx := range map[string]int{"id": idIdx, "participant_id": participantIdx, "selection": selectionIdx, "amount": amountIdx} {
		if idx == -1 {
			return nil, nil, fmt.Errorf("%w: %s column not found in CSV", models.ErrValidation, name)
		}
	}

	result := &Result{Errors: []string{}}
	var bets []*models.Bet
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalRows++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}

		bet := &models.Bet{
			ID:            strings.TrimSpace(row[idIdx]),
			ParticipantID: strings.TrimSpace(row[participantIdx]),
			RoundID:       round.ID,
			Selection:     splitSelection(row[selectionIdx]),
			Status:        models.BetStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if collaboratorIdx != -1 {
			if c := strings.TrimSpace(row[collaboratorIdx]); c != "" {
				bet.CollaboratorID = &c
			}
		}
		if slotIdx != -1 {
			bet.TimeSlot = strings.TrimSpace(row[slotIdx])
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row[amountIdx]))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid amount %q", result.TotalRows, row[amountIdx]))
			continue
		}
		bet.Amount = amount

		if err := validateBet(round, bet); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}
		if seen[bet.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate bet id %s", result.TotalRows, bet.ID))
			continue
		}
		seen[bet.ID] = true
		bets = append(bets, bet)
	}

	result.Parsed = len(bets)
	return bets, result, nil
}

func validateBet(round *models.Round, bet *models.Bet) error {
	if bet.ID == "" || bet.ParticipantID == "" {
		return fmt.Errorf("%w: id and participant are required", models.ErrValidation)
	}
	if bet.Amount.IsNegative() || !bet.Amount.Equal(game.Round2(bet.Amount)) {
		return fmt.Errorf("%w: amount %s must be a non-negative value in cents", models.ErrValidation, bet.Amount)
	}
	n := len(bet.Selection)
	if (round.MinSelection > 0 && n < round.MinSelection) || (round.MaxSelection > 0 && n > round.MaxSelection) {
		return fmt.Errorf("%w: selection has %d values, expected %d to %d", models.ErrValidation, n, round.MinSelection, round.MaxSelection)
	}
	// selections follow the same alphabet as draws
	check := *round
	check.DrawSize = 0
	return game.ValidateDraw(&check, bet.Selection, bet.TimeSlot)
}

// splitSelection accepts values separated by spaces, commas, semicolons or dashes
func splitSelection(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '-'
	})
}

// findColumnIndex finds the index of the first header matching any name,
// ignoring case and surrounding space
func findColumnIndex(header []string, names []string) int {
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, name := range names {
			if col == name {
				return i
			}
		}
	}
	return -1
}
