package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

func TestAdvance(t *testing.T) {
	end := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   models.RoundStatus
		now      time.Time
		champion bool
		want     models.RoundStatus
	}{
		{"open before end", models.RoundStatusOpen, end.Add(-time.Minute), false, models.RoundStatusOpen},
		{"open at end closes", models.RoundStatusOpen, end, false, models.RoundStatusClosed},
		{"open never settles", models.RoundStatusOpen, end.Add(time.Hour), true, models.RoundStatusClosed},
		{"closed without champion stays closed", models.RoundStatusClosed, end.Add(time.Hour), false, models.RoundStatusClosed},
		{"closed with champion settles", models.RoundStatusClosed, end.Add(time.Hour), true, models.RoundStatusSettled},
		{"settled is terminal", models.RoundStatusSettled, end.Add(time.Hour), false, models.RoundStatusSettled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Advance(&models.Round{Status: tc.status, EndTime: end}, tc.now, tc.champion)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Advance(&models.Round{Status: "archived"}, end, false)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestCanTransition(t *testing.T) {
	assert.NoError(t, CanTransition(models.RoundStatusOpen, models.RoundStatusClosed))
	assert.NoError(t, CanTransition(models.RoundStatusClosed, models.RoundStatusSettled))

	for _, pair := range [][2]models.RoundStatus{
		{models.RoundStatusOpen, models.RoundStatusSettled},
		{models.RoundStatusSettled, models.RoundStatusOpen},
		{models.RoundStatusClosed, models.RoundStatusOpen},
		{models.RoundStatusSettled, models.RoundStatusClosed},
	} {
		err := CanTransition(pair[0], pair[1])
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	}
}
