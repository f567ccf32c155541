package game

import (
	"fmt"
	"strings"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// ValidateDraw checks drawn values against the round's count and alphabet
// constraints. All failures wrap models.ErrValidation.
func ValidateDraw(round *models.Round, values []string, timeSlot string) error {
	if round == nil {
		return fmt.Errorf("%w: round is required", models.ErrValidation)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: at least one drawn value is required", models.ErrValidation)
	}
	if round.DrawSize > 0 && len(values) != round.DrawSize {
		return fmt.Errorf("%w: expected %d drawn values, got %d", models.ErrValidation, round.DrawSize, len(values))
	}
	if round.Kind == models.GameKindFixedDigits && strings.TrimSpace(timeSlot) == "" {
		return fmt.Errorf("%w: time slot is required for fixed digit games", models.ErrValidation)
	}
	return validateValues(round, values)
}

func validateValues(round *models.Round, values []string) error {
	var symbols map[string]bool
	if round.Kind == models.GameKindSymbolSet {
		symbols = make(map[string]bool, len(round.SymbolSet()))
		for _, s := range round.SymbolSet() {
			symbols[NormalizeValue(models.GameKindSymbolSet, s)] = true
		}
	}

	seen := make(map[string]bool, len(values))
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			return fmt.Errorf("%w: empty value", models.ErrValidation)
		}

		switch round.Kind {
		case models.GameKindNumberSet:
			if !isDigits(v) {
				return fmt.Errorf("%w: value %q must contain digits only", models.ErrValidation, raw)
			}
		case models.GameKindFixedDigits:
			if !isDigits(v) {
				return fmt.Errorf("%w: value %q must contain digits only", models.ErrValidation, raw)
			}
			if round.DigitCount > 0 && len(v) != round.DigitCount {
				return fmt.Errorf("%w: value %q must have %d digits", models.ErrValidation, raw, round.DigitCount)
			}
		case models.GameKindSymbolSet:
			if !symbols[NormalizeValue(round.Kind, v)] {
				return fmt.Errorf("%w: unknown symbol %q", models.ErrValidation, raw)
			}
		default:
			return fmt.Errorf("%w: unsupported game kind %q", models.ErrValidation, round.Kind)
		}

		// set games draw distinct values
		if round.Kind != models.GameKindFixedDigits {
			n := NormalizeValue(round.Kind, v)
			if seen[n] {
				return fmt.Errorf("%w: duplicate value %q", models.ErrValidation, raw)
			}
			seen[n] = true
		}
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
