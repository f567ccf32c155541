// Package game holds the pure rules of the pool game: value validation,
// scoring, winner classification, pool arithmetic and round status
// transitions. Nothing in here performs I/O.
package game

import (
	"strings"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// NormalizeValue returns the canonical form of a selected or drawn value.
// Numeric set values drop their leading zeros so "07" and "7" compare equal;
// fixed digit values keep them because the digit count is significant.
func NormalizeValue(kind models.GameKind, v string) string {
	v = strings.TrimSpace(v)
	switch kind {
	case models.GameKindNumberSet:
		trimmed := strings.TrimLeft(v, "0")
		if trimmed == "" && v != "" {
			return "0"
		}
		return trimmed
	case models.GameKindSymbolSet:
		return strings.ToLower(v)
	default:
		return v
	}
}

// Score returns the match count of a bet against the draw.
//
// Number and symbol games count the distinct selected values present in the
// draw. Fixed digit games are exact-match: 1 when both the digits and the time
// slot equal the draw, 0 otherwise.
func Score(kind models.GameKind, bet *models.Bet, draw *models.Draw) int {
	if bet == nil || draw == nil {
		return 0
	}
	if kind == models.GameKindFixedDigits {
		return scoreExact(bet, draw)
	}

	drawn := make(map[string]bool, len(draw.Values))
	for _, v := range draw.Values {
		drawn[NormalizeValue(kind, v)] = true
	}

	matches := 0
	seen := make(map[string]bool, len(bet.Selection))
	for _, v := range bet.Selection {
		n := NormalizeValue(kind, v)
		if seen[n] {
			continue
		}
		seen[n] = true
		if drawn[n] {
			matches++
		}
	}
	return matches
}

func scoreExact(bet *models.Bet, draw *models.Draw) int {
	if len(bet.Selection) != len(draw.Values) {
		return 0
	}
	if !strings.EqualFold(strings.TrimSpace(bet.TimeSlot), strings.TrimSpace(draw.TimeSlot)) {
		return 0
	}
	for i := range bet.Selection {
		if NormalizeValue(models.GameKindFixedDigits, bet.Selection[i]) != NormalizeValue(models.GameKindFixedDigits, draw.Values[i]) {
			return 0
		}
	}
	return 1
}

// ScoreAll scores every bet of a round against its draw
func ScoreAll(kind models.GameKind, bets []*models.Bet, draw *models.Draw) []ScoredBet {
	scored := make([]ScoredBet, 0, len(bets))
	for _, b := range bets {
		scored = append(scored, ScoredBet{Bet: b, Score: Score(kind, b, draw)})
	}
	return scored
}
