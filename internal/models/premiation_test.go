package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPremiationConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PremiationConfig
		wantErr bool
	}{
		{"fixed sums to one", PremiationConfig{Mode: PremiationModeFixed, Shares: map[Category]float64{
			CategoryChampion: 0.6, CategoryRunnerUp: 0.2, CategoryAdministrative: 0.15, CategoryCommission: 0.05,
		}}, false},
		{"empty mode means fixed", PremiationConfig{Shares: map[Category]float64{CategoryChampion: 1}}, false},
		{"sum below one", PremiationConfig{Shares: map[Category]float64{CategoryChampion: 0.5}}, true},
		{"unknown category", PremiationConfig{Shares: map[Category]float64{"jackpot": 1}}, true},
		{"negative share", PremiationConfig{Shares: map[Category]float64{CategoryChampion: 1.2, CategoryRunnerUp: -0.2}}, true},
		{"percent left unconverted", PremiationConfig{Shares: map[Category]float64{CategoryChampion: 80, CategoryAdministrative: 20}}, true},
		{"unknown mode", PremiationConfig{Mode: "lottery", Shares: map[Category]float64{CategoryChampion: 1}}, true},
		{"tiers in fixed mode", PremiationConfig{Shares: map[Category]float64{CategoryChampion: 1}, PointTiers: []PointTier{{Points: 5, Share: 0}}}, true},
		{"points mode", PremiationConfig{Mode: PremiationModePoints,
			Shares:     map[Category]float64{CategoryAdministrative: 0.2},
			PointTiers: []PointTier{{Points: 5, Share: 0.5}, {Points: 4, Share: 0.3}},
		}, false},
		{"points mode without tiers", PremiationConfig{Mode: PremiationModePoints, Shares: map[Category]float64{CategoryAdministrative: 1}}, true},
		{"points mode rejects champion share", PremiationConfig{Mode: PremiationModePoints,
			Shares:     map[Category]float64{CategoryChampion: 0.2},
			PointTiers: []PointTier{{Points: 5, Share: 0.8}},
		}, true},
		{"duplicate point tier", PremiationConfig{Mode: PremiationModePoints,
			PointTiers: []PointTier{{Points: 5, Share: 0.5}, {Points: 5, Share: 0.5}},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfigInvalid)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPremiationConfigNormalize(t *testing.T) {
	in := PremiationConfig{
		Mode:       PremiationModePoints,
		Shares:     map[Category]float64{CategoryAdministrative: 20},
		PointTiers: []PointTier{{Points: 5, Share: 50}, {Points: 4, Share: 30}},
	}

	out, err := in.Normalize(ShareUnitPercent)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, out.Shares[CategoryAdministrative], 1e-9)
	assert.InDelta(t, 0.5, out.PointTiers[0].Share, 1e-9)
	assert.InDelta(t, 0.3, out.PointTiers[1].Share, 1e-9)
	assert.NoError(t, out.Validate())
	assert.Equal(t, 20.0, in.Shares[CategoryAdministrative], "input is not mutated")

	same, err := PremiationConfig{Shares: map[Category]float64{CategoryChampion: 1}}.Normalize(ShareUnitFraction)
	require.NoError(t, err)
	assert.Equal(t, PremiationModeFixed, same.Mode)
	assert.Equal(t, 1.0, same.Shares[CategoryChampion])

	_, err = in.Normalize("basis_points")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPointCategory(t *testing.T) {
	assert.Equal(t, Category("points_5"), PointCategory(5))
	assert.False(t, PointCategory(5).Valid())
	assert.True(t, CategoryChampion.Valid())
}
