package game

import (
	"sort"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// ScoredBet pairs a bet with its match count
type ScoredBet struct {
	Bet   *models.Bet
	Score int
}

// Thresholds parameterise the classifier for a round
type Thresholds struct {
	// ChampionScore is the minimum score that wins the champion tier
	ChampionScore int
}

// Tiers is the classifier output. Ties are kept together; the tiers are
// disjoint so a bet is paid from one tier at most.
type Tiers struct {
	Champion  []ScoredBet
	RunnerUp  []ScoredBet
	LastPlace []ScoredBet
}

// Get returns the members of a prize category
func (t Tiers) Get(cat models.Category) []ScoredBet {
	switch cat {
	case models.CategoryChampion:
		return t.Champion
	case models.CategoryRunnerUp:
		return t.RunnerUp
	case models.CategoryLastPlace:
		return t.LastPlace
	}
	return nil
}

// DefaultThresholds derives the champion threshold of a round. An explicit
// ChampionScore wins; fixed digit games are exact-match so 1 is a full hit;
// set games need every selectable value to be drawn.
//
// The set-game default is min(distinct drawn, MaxSelection), so a bet with
// fewer than MaxSelection values can never reach it. Rounds that accept
// variable-size selections (MinSelection < MaxSelection) must set
// ChampionScore.
func DefaultThresholds(round *models.Round, draw *models.Draw) Thresholds {
	if round.ChampionScore > 0 {
		return Thresholds{ChampionScore: round.ChampionScore}
	}
	if round.Kind == models.GameKindFixedDigits {
		return Thresholds{ChampionScore: 1}
	}

	distinct := make(map[string]bool)
	if draw != nil {
		for _, v := range draw.Values {
			distinct[NormalizeValue(round.Kind, v)] = true
		}
	}
	threshold := len(distinct)
	if round.MaxSelection > 0 && round.MaxSelection < threshold {
		threshold = round.MaxSelection
	}
	if threshold < 1 {
		threshold = 1
	}
	return Thresholds{ChampionScore: threshold}
}

// sortScored orders by score descending, then bet id for a stable output
func sortScored(scored []ScoredBet) []ScoredBet {
	out := make([]ScoredBet, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Bet.ID < out[j].Bet.ID
	})
	return out
}

// Classify groups scored bets into champion, runner-up and last-place tiers.
//
// Champion holds every bet at or above the threshold. Runner-up holds the
// ties at the highest score when there is no champion, otherwise the ties at
// the highest score below the threshold. Last-place holds the ties at the
// lowest observed score that are not already in a higher tier.
func Classify(scored []ScoredBet, t Thresholds) Tiers {
	var tiers Tiers
	if len(scored) == 0 {
		return tiers
	}
	threshold := t.ChampionScore
	if threshold < 1 {
		threshold = 1
	}

	sorted := sortScored(scored)
	placed := make(map[string]bool, len(sorted))

	for _, sb := range sorted {
		if sb.Score >= threshold {
			tiers.Champion = append(tiers.Champion, sb)
			placed[sb.Bet.ID] = true
		}
	}

	runnerScore := -1
	for _, sb := range sorted {
		if !placed[sb.Bet.ID] {
			runnerScore = sb.Score
			break
		}
	}
	if runnerScore >= 0 {
		for _, sb := range sorted {
			if !placed[sb.Bet.ID] && sb.Score == runnerScore {
				tiers.RunnerUp = append(tiers.RunnerUp, sb)
				placed[sb.Bet.ID] = true
			}
		}
	}

	minScore := sorted[len(sorted)-1].Score
	for _, sb := range sorted {
		if sb.Score == minScore && !placed[sb.Bet.ID] {
			tiers.LastPlace = append(tiers.LastPlace, sb)
		}
	}
	return tiers
}

// ClassifyByPoints groups bets by the point tier whose points equal their
// score. Every configured tier has an entry, empty when nobody hit it.
func ClassifyByPoints(scored []ScoredBet, pointTiers []models.PointTier) map[models.Category][]ScoredBet {
	groups := make(map[models.Category][]ScoredBet, len(pointTiers))
	byPoints := make(map[int]models.Category, len(pointTiers))
	for _, pt := range pointTiers {
		cat := models.PointCategory(pt.Points)
		groups[cat] = nil
		byPoints[pt.Points] = cat
	}
	for _, sb := range sortScored(scored) {
		if cat, ok := byPoints[sb.Score]; ok {
			groups[cat] = append(groups[cat], sb)
		}
	}
	return groups
}
