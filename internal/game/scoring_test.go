package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		kind      models.GameKind
		selection []string
		slot      string
		drawn     []string
		drawSlot  string
		want      int
	}{
		{"number set partial", models.GameKindNumberSet, []string{"1", "2", "3"}, "", []string{"3", "2", "9"}, "", 2},
		{"leading zeros compare equal", models.GameKindNumberSet, []string{"07", "00"}, "", []string{"7", "0"}, "", 2},
		{"duplicates collapse", models.GameKindNumberSet, []string{"5", "05", "5"}, "", []string{"5", "5"}, "", 1},
		{"no match", models.GameKindNumberSet, []string{"10", "11"}, "", []string{"12"}, "", 0},
		{"symbols ignore case", models.GameKindSymbolSet, []string{"Leao", "gato"}, "", []string{"leao", "urso"}, "", 1},
		{"fixed digits exact", models.GameKindFixedDigits, []string{"07"}, "PM", []string{"07"}, "pm", 1},
		{"fixed digits wrong slot", models.GameKindFixedDigits, []string{"07"}, "AM", []string{"07"}, "PM", 0},
		{"fixed digits keep leading zero", models.GameKindFixedDigits, []string{"7"}, "PM", []string{"07"}, "PM", 0},
		{"fixed digits partial is a miss", models.GameKindFixedDigits, []string{"07", "12"}, "PM", []string{"07", "13"}, "PM", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bet := &models.Bet{ID: "b", Selection: tc.selection, TimeSlot: tc.slot}
			draw := &models.Draw{Values: tc.drawn, TimeSlot: tc.drawSlot}
			assert.Equal(t, tc.want, Score(tc.kind, bet, draw))
		})
	}
}

func TestScoreNilInputs(t *testing.T) {
	assert.Equal(t, 0, Score(models.GameKindNumberSet, nil, &models.Draw{}))
	assert.Equal(t, 0, Score(models.GameKindNumberSet, &models.Bet{}, nil))
}

func TestValidateDraw(t *testing.T) {
	numbers := &models.Round{Kind: models.GameKindNumberSet, DrawSize: 3}
	digits := &models.Round{Kind: models.GameKindFixedDigits, DigitCount: 2}
	symbols := &models.Round{Kind: models.GameKindSymbolSet}

	tests := []struct {
		name    string
		round   *models.Round
		values  []string
		slot    string
		wantErr bool
	}{
		{"valid numbers", numbers, []string{"1", "22", "43"}, "", false},
		{"wrong count", numbers, []string{"1", "22"}, "", true},
		{"non digit", numbers, []string{"1", "2a", "3"}, "", true},
		{"duplicate number", numbers, []string{"1", "01", "3"}, "", true},
		{"empty value", numbers, []string{"1", " ", "3"}, "", true},
		{"no values", numbers, nil, "", true},
		{"valid pair", digits, []string{"07"}, "PM", false},
		{"pair needs slot", digits, []string{"07"}, "", true},
		{"pair digit count", digits, []string{"7"}, "PM", true},
		{"valid symbols", symbols, []string{"leao", "Gato"}, "", false},
		{"unknown symbol", symbols, []string{"dragao"}, "", true},
		{"custom symbol set", &models.Round{Kind: models.GameKindSymbolSet, Symbols: []string{"sol", "lua"}}, []string{"lua"}, "", false},
		{"unknown kind", &models.Round{Kind: "bingo"}, []string{"1"}, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDraw(tc.round, tc.values, tc.slot)
			if tc.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
