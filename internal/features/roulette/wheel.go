// wheel.go is the outcome generator.
//
// The outer wheel is not drawn: every spin lands on the zero segment, so the
// outer wheel never produces a win. The inner tier is drawn from the fixed
// distribution 65/25/8/2. Settle still implements the winning branch so that
// an outer multiplier above zero is paid correctly.

package roulette

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
)

// RandomSource yields uniform numbers in [0,1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for concurrent spins.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a ChaCha8 generator seeded from crypto/rand.
func NewRandomSource() RandomSource {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return &lockedSource{rng: rand.New(rand.NewChaCha8(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Generator produces spin outcomes.
type Generator struct {
	rng RandomSource
}

// NewGenerator creates a generator over rng.
func NewGenerator(rng RandomSource) *Generator {
	return &Generator{rng: rng}
}

// Spin draws one outcome for bet. The caller debits bet before calling and
// applies Gain afterwards.
func (g *Generator) Spin(bet decimal.Decimal) (SpinOutcome, error) {
	if !bet.IsPositive() {
		return SpinOutcome{}, common.ErrInvalidBet
	}
	inner := PickInner(g.rng.Float64())
	return Settle(bet, ZeroOuterIndex, inner)
}

// PickInner maps r in [0,1) onto an inner tier by walking the cumulative
// weight table: the first tier whose running sum exceeds r×100 wins.
func PickInner(r float64) int {
	total := 0
	for _, w := range InnerWeights {
		total += w
	}

	scaled := r * float64(total)
	cumulative := 0
	for i, w := range InnerWeights {
		cumulative += w
		if scaled < float64(cumulative) {
			return i
		}
	}
	// r ≥ 1 from a misbehaving source
	return len(InnerWeights) - 1
}

// Settle computes the outcome for explicit wheel positions.
//
// Zero outer multiplier: the player loses bet × inner. The bet itself is
// already debited, so Gain = bet − bet × inner (never positive).
// Positive outer multiplier: Gain = bet × outer × inner, credited in full.
func Settle(bet decimal.Decimal, outerIndex, innerIndex int) (SpinOutcome, error) {
	if !bet.IsPositive() {
		return SpinOutcome{}, common.ErrInvalidBet
	}
	if outerIndex < 0 || outerIndex >= len(OuterValues) || innerIndex < 0 || innerIndex >= len(InnerValues) {
		return SpinOutcome{}, common.ErrInvalidWheelIndex
	}

	outer := OuterValues[outerIndex]
	inner := InnerValues[innerIndex]

	out := SpinOutcome{
		OuterIndex:      outerIndex,
		InnerIndex:      innerIndex,
		OuterMultiplier: outer,
		InnerMultiplier: inner,
		Bet:             bet,
	}

	if outer == 0 {
		loss := bet.Mul(decimal.NewFromInt(inner))
		out.Gain = loss.Sub(bet).Neg()
		return out, nil
	}

	out.Gain = bet.Mul(decimal.NewFromInt(outer)).Mul(decimal.NewFromInt(inner))
	out.Won = true
	return out, nil
}
