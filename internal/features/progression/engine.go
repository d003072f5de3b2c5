// engine.go holds the pure level/XP formulas.
//
// Per-level cost: cost(L) = floor(100 × 1.15^(L-1)).
// A player with total XP T is at the largest level L such that
// cost(1) + ... + cost(L-1) ≤ T; the remainder is the XP inside that level.

package progression

import (
	"math"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
)

const (
	winXPFactor = 1.5
	minXPAward  = 1
)

var (
	baseLevelCost  = decimal.NewFromInt(100)
	levelCostRatio = decimal.RequireFromString("1.15")
)

// levelCosts[i] is cost(i+1). Computed with exact decimal arithmetic:
// in float64, 100 × 1.15 floors to 114.
var levelCosts = buildLevelCosts()

func buildLevelCosts() []int64 {
	maxCost := decimal.NewFromInt(math.MaxInt64)
	costs := make([]int64, 0, 300)
	exact := baseLevelCost
	for {
		floored := exact.Floor()
		if floored.GreaterThanOrEqual(maxCost) {
			return costs
		}
		costs = append(costs, floored.IntPart())
		exact = exact.Mul(levelCostRatio)
	}
}

// LevelCost returns the XP needed to complete the given level.
func LevelCost(level int) (int64, error) {
	if level < 1 {
		return 0, common.ErrInvalidLevel
	}
	return levelCost(level), nil
}

// levelCost saturates at MaxInt64 past the table.
func levelCost(level int) int64 {
	if level-1 < len(levelCosts) {
		return levelCosts[level-1]
	}
	return math.MaxInt64
}

// CumulativeXP returns the total XP required to reach the start of level,
// i.e. cost(1) + ... + cost(level-1).
func CumulativeXP(level int) (int64, error) {
	if level < 1 {
		return 0, common.ErrInvalidLevel
	}
	var sum int64
	for l := 1; l < level; l++ {
		sum = addSaturating(sum, levelCost(l))
	}
	return sum, nil
}

// ComputeLevelData resolves level, in-level XP, title, color and perks for totalXP.
func ComputeLevelData(totalXP int64) (LevelData, error) {
	if totalXP < 0 {
		return LevelData{}, common.ErrNegativeXP
	}

	level := 1
	remaining := totalXP
	for {
		cost := levelCost(level)
		if remaining < cost {
			break
		}
		remaining -= cost
		level++
	}

	tier := TierFor(level)
	return LevelData{
		TotalXP:       totalXP,
		Level:         level,
		CurrentXP:     remaining,
		XPToNextLevel: levelCost(level),
		Title:         tier.Title,
		Color:         tier.Color,
		Perks:         PerksFor(level),
	}, nil
}

// TierFor returns the tier with the largest MinLevel ≤ level.
func TierFor(level int) Tier {
	selected := Tiers[0]
	for _, t := range Tiers {
		if t.MinLevel > level {
			break
		}
		selected = t
	}
	return selected
}

// PerksFor lists every perk unlocked at level, in table order.
func PerksFor(level int) []string {
	perks := make([]string, 0, len(Perks))
	for _, p := range Perks {
		if p.MinLevel <= level {
			perks = append(perks, p.Description)
		}
	}
	return perks
}

// XPGain returns the XP awarded for one spin.
//
//	xp = floor(bet)
//	xp = floor(xp × 1.5) on a win
//	xp = max(xp, 1)
func XPGain(bet decimal.Decimal, won bool) (int64, error) {
	if !bet.IsPositive() {
		return 0, common.ErrInvalidBet
	}

	xp := bet.Floor()
	if won {
		xp = xp.Mul(decimal.NewFromFloat(winXPFactor)).Floor()
	}

	award := xp.IntPart()
	if award < minXPAward {
		award = minXPAward
	}
	return award, nil
}

// NextMilestone returns the smallest tier threshold strictly above level
// together with the total XP required to reach it. ok is false when the
// table is exhausted.
func NextMilestone(level int) (m Milestone, ok bool, err error) {
	if level < 1 {
		return Milestone{}, false, common.ErrInvalidLevel
	}
	for _, t := range Tiers {
		if t.MinLevel <= level {
			continue
		}
		required, err := CumulativeXP(t.MinLevel)
		if err != nil {
			return Milestone{}, false, err
		}
		return Milestone{Level: t.MinLevel, Title: t.Title, RequiredXP: required}, true, nil
	}
	return Milestone{}, false, nil
}

func addSaturating(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
