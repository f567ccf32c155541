package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

const moneyPlaces = 2

// Round2 rounds an amount to cents, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// floorCents drops fractions of a cent. Pools are never rounded up, so their
// sum cannot exceed the amount they were cut from.
func floorCents(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(moneyPlaces)
}

// SplitPool divides the collected total into category pools. Each pool is
// rounded down to cents; the sum may fall short of total by a few cents until
// Reconcile is applied.
//
// The config is validated first and never normalized: shares that do not sum
// to 1 fail with models.ErrConfigInvalid.
func SplitPool(total decimal.Decimal, cfg models.PremiationConfig) (map[models.Category]decimal.Decimal, error) {
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: total collected is negative", models.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	split := make(map[models.Category]decimal.Decimal)
	if !cfg.IsPoints() {
		for _, cat := range models.Categories {
			split[cat] = floorCents(total.Mul(decimal.NewFromFloat(cfg.Share(cat))))
		}
		return split, nil
	}

	admin := floorCents(total.Mul(decimal.NewFromFloat(cfg.Share(models.CategoryAdministrative))))
	commission := floorCents(total.Mul(decimal.NewFromFloat(cfg.Share(models.CategoryCommission))))
	split[models.CategoryAdministrative] = admin
	split[models.CategoryCommission] = commission

	weight := decimal.Zero
	for _, pt := range cfg.PointTiers {
		weight = weight.Add(decimal.NewFromFloat(pt.Share))
	}
	if !weight.IsPositive() {
		return nil, fmt.Errorf("%w: point tiers have zero total weight", models.ErrConfigInvalid)
	}
	remainder := total.Sub(admin).Sub(commission)
	for _, pt := range cfg.SortedPointTiers() {
		split[models.PointCategory(pt.Points)] = floorCents(remainder.Mul(decimal.NewFromFloat(pt.Share)).Div(weight))
	}
	return split, nil
}

// SumPools adds up every pool of a split
func SumPools(split map[models.Category]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, amount := range split {
		sum = sum.Add(amount)
	}
	return sum
}

// Reconcile returns a copy of split whose pools sum to total exactly. The
// rounding remainder of a SplitPool result is never negative and goes to the
// administrative pool; prize pools are left as split.
func Reconcile(split map[models.Category]decimal.Decimal, total decimal.Decimal) map[models.Category]decimal.Decimal {
	out := make(map[models.Category]decimal.Decimal, len(split)+1)
	for cat, amount := range split {
		out[cat] = amount
	}
	if diff := total.Sub(SumPools(out)); !diff.IsZero() {
		out[models.CategoryAdministrative] = out[models.CategoryAdministrative].Add(diff)
	}
	return out
}

// SplitEqually divides amount into n cent-exact shares that sum to amount.
// Leftover cents go one each to the first shares, so callers must pass
// members in a stable order.
func SplitEqually(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	cents := Round2(amount).Shift(moneyPlaces).IntPart()
	base := cents / int64(n)
	leftover := cents % int64(n)

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		c := base
		if int64(i) < leftover {
			c++
		}
		shares[i] = decimal.New(c, -moneyPlaces)
	}
	return shares
}
