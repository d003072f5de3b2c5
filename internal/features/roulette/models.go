// Package roulette implements the two-wheel roulette: an outer multiplier
// wheel and an inner multiplier wheel spun together.
// models.go describes the wheel tables, spin outcomes and statistics.
package roulette

import (
	"time"

	"github.com/shopspring/decimal"
)

// OuterValues are the outer wheel multipliers, index 0 is the zero segment.
var OuterValues = []int64{0, 2, 5, 10, 15, 20, 50}

// InnerValues are the inner wheel multiplier tiers.
var InnerValues = []int64{1, 2, 3, 4}

// InnerWeights are the inner tier weights in percent; they sum to 100.
var InnerWeights = []int{65, 25, 8, 2}

// ZeroOuterIndex is the outer segment every spin lands on.
const ZeroOuterIndex = 0

// SpinOutcome is the result of one spin. Gain is the balance change to apply
// after the bet has already been debited.
type SpinOutcome struct {
	OuterIndex      int             `json:"outerIndex"`
	InnerIndex      int             `json:"innerIndex"`
	OuterMultiplier int64           `json:"outerMultiplier"`
	InnerMultiplier int64           `json:"innerMultiplier"`
	Bet             decimal.Decimal `json:"bet"`
	Gain            decimal.Decimal `json:"gain"`
	Won             bool            `json:"won"`
}

// Game is one recorded spin.
type Game struct {
	ID           string          `json:"id"`
	PlayerID     string          `json:"playerId"`
	Outcome      SpinOutcome     `json:"outcome"`
	AppliedGain  decimal.Decimal `json:"appliedGain"` // Gain after clamping at zero balance
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	XPAwarded    int64           `json:"xpAwarded"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Stats are a player's roulette statistics.
type Stats struct {
	PlayerID     string          `json:"playerId"`
	TotalSpins   int             `json:"totalSpins"`
	TotalWins    int             `json:"totalWins"`
	TotalWagered decimal.Decimal `json:"totalWagered"`
	TotalLost    decimal.Decimal `json:"totalLost"` // losses beyond the stake
	TotalWon     decimal.Decimal `json:"totalWon"`
	BiggestWin   decimal.Decimal `json:"biggestWin"`
	CurrentRTP   float64         `json:"currentRtp"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// HouseStats aggregate every player.
type HouseStats struct {
	Players      int             `json:"players"`
	TotalSpins   int             `json:"totalSpins"`
	TotalWagered decimal.Decimal `json:"totalWagered"`
	TotalLost    decimal.Decimal `json:"totalLost"`
	TotalWon     decimal.Decimal `json:"totalWon"`
	RTP          float64         `json:"rtp"`
}

// PlayResult is what a player sees after a spin.
type PlayResult struct {
	GameID      string          `json:"gameId"`
	Outcome     SpinOutcome     `json:"outcome"`
	AppliedGain decimal.Decimal `json:"appliedGain"`
	Balance     decimal.Decimal `json:"balance"`
	XPAwarded   int64           `json:"xpAwarded"`
	Level       int             `json:"level"`
	LeveledUp   bool            `json:"leveledUp"`
}
