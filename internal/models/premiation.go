package models

import (
	"fmt"
	"math"
	"sort"
)

// Category is a prize or overhead category of the collected pool
type Category string

const (
	CategoryChampion       Category = "champion"
	CategoryRunnerUp       Category = "runner_up"
	CategoryLastPlace      Category = "last_place"
	CategoryAdministrative Category = "administrative_cost"
	CategoryCommission     Category = "collaborator_commission"
)

// Categories lists the closed category set in payout order
var Categories = []Category{
	CategoryChampion,
	CategoryRunnerUp,
	CategoryLastPlace,
	CategoryAdministrative,
	CategoryCommission,
}

// PrizeCategories are the categories paid to winning bets
var PrizeCategories = []Category{CategoryChampion, CategoryRunnerUp, CategoryLastPlace}

// Valid reports whether c belongs to the closed category set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PointCategory names the pool of a point tier, e.g. "points_5"
func PointCategory(points int) Category {
	return Category(fmt.Sprintf("points_%d", points))
}

// PremiationMode selects between fixed category shares and point tiers
type PremiationMode string

const (
	PremiationModeFixed  PremiationMode = "fixed"
	PremiationModePoints PremiationMode = "points"
)

// ShareUnit is the unit shares are expressed in at a write boundary
type ShareUnit string

const (
	ShareUnitFraction ShareUnit = "fraction" // 0-1, canonical
	ShareUnitPercent  ShareUnit = "percent"  // 0-100, converted on write
)

// ShareEpsilon is the tolerance used when checking that shares sum to 1
const ShareEpsilon = 1e-6

// PointTier pays bets that scored exactly Points
type PointTier struct {
	Points int     `bson:"points" json:"points"`
	Share  float64 `bson:"share" json:"share"`
}

// PremiationConfig describes how the collected pool is split.
// Shares are fractions of 1.0.
//
// In fixed mode Shares holds all five categories. In points mode Shares holds
// only the administrative and commission categories and PointTiers carries the
// rest; the tiers' shares act as weights over whatever is left.
type PremiationConfig struct {
	Mode       PremiationMode       `bson:"mode" json:"mode"`
	Shares     map[Category]float64 `bson:"shares" json:"shares"`
	PointTiers []PointTier          `bson:"pointTiers,omitempty" json:"pointTiers,omitempty"`
}

// IsPoints reports whether the config uses point tiers
func (c PremiationConfig) IsPoints() bool {
	return c.Mode == PremiationModePoints
}

// Share returns the fraction configured for a category (0 if absent)
func (c PremiationConfig) Share(cat Category) float64 {
	return c.Shares[cat]
}

// TotalPointWeight sums the weights of all point tiers
func (c PremiationConfig) TotalPointWeight() float64 {
	total := 0.0
	for _, t := range c.PointTiers {
		total += t.Share
	}
	return total
}

// SortedPointTiers returns the point tiers ordered by points descending
func (c PremiationConfig) SortedPointTiers() []PointTier {
	tiers := make([]PointTier, len(c.PointTiers))
	copy(tiers, c.PointTiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Points > tiers[j].Points })
	return tiers
}

// Validate checks the config against the closed category set and the
// sum-to-one invariant. It never normalizes.
func (c PremiationConfig) Validate() error {
	switch c.Mode {
	case PremiationModeFixed, "":
	case PremiationModePoints:
	default:
		return fmt.Errorf("%w: unknown premiation mode %q", ErrConfigInvalid, c.Mode)
	}

	sum := 0.0
	for cat, share := range c.Shares {
		if !cat.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrConfigInvalid, cat)
		}
		if c.IsPoints() && cat != CategoryAdministrative && cat != CategoryCommission {
			return fmt.Errorf("%w: category %q is not allowed in points mode", ErrConfigInvalid, cat)
		}
		if err := checkShare(string(cat), share); err != nil {
			return err
		}
		sum += share
	}

	if c.IsPoints() {
		if len(c.PointTiers) == 0 {
			return fmt.Errorf("%w: points mode requires at least one point tier", ErrConfigInvalid)
		}
		seen := make(map[int]bool, len(c.PointTiers))
		for _, t := range c.PointTiers {
			if t.Points < 0 {
				return fmt.Errorf("%w: negative points %d", ErrConfigInvalid, t.Points)
			}
			if seen[t.Points] {
				return fmt.Errorf("%w: duplicate point tier %d", ErrConfigInvalid, t.Points)
			}
			seen[t.Points] = true
			if err := checkShare(string(PointCategory(t.Points)), t.Share); err != nil {
				return err
			}
			sum += t.Share
		}
		if c.TotalPointWeight() <= 0 {
			return fmt.Errorf("%w: point tiers have zero total weight", ErrConfigInvalid)
		}
	} else if len(c.PointTiers) > 0 {
		return fmt.Errorf("%w: point tiers are only allowed in points mode", ErrConfigInvalid)
	}

	if math.Abs(sum-1.0) > ShareEpsilon {
		return fmt.Errorf("%w: shares sum to %.6f, expected 1.0", ErrConfigInvalid, sum)
	}
	return nil
}

func checkShare(name string, share float64) error {
	if math.IsNaN(share) || share < 0 || share > 1+ShareEpsilon {
		return fmt.Errorf("%w: share for %s must be within [0, 1], got %v", ErrConfigInvalid, name, share)
	}
	return nil
}

// Normalize converts a config received in the given unit into fractions.
// The unit must be stated by the caller; it is never inferred from the values.
func (c PremiationConfig) Normalize(unit ShareUnit) (PremiationConfig, error) {
	var factor float64
	switch unit {
	case ShareUnitFraction, "":
		factor = 1
	case ShareUnitPercent:
		factor = 100
	default:
		return PremiationConfig{}, fmt.Errorf("%w: unknown share unit %q", ErrValidation, unit)
	}

	out := PremiationConfig{Mode: c.Mode, Shares: make(map[Category]float64, len(c.Shares))}
	if out.Mode == "" {
		out.Mode = PremiationModeFixed
	}
	for cat, share := range c.Shares {
		out.Shares[cat] = share / factor
	}
	for _, t := range c.PointTiers {
		out.PointTiers = append(out.PointTiers, PointTier{Points: t.Points, Share: t.Share / factor})
	}
	return out, nil
}
