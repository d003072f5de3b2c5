// rtp.go computes return-to-player figures.
//
// RTP = paid out / taken in × 100, where "taken in" is stakes plus any loss
// beyond the stake. With the outer wheel fixed on zero, nothing is ever paid
// out and RTP stays at 0%.

package roulette

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateRTP returns paidOut / takenIn × 100, or 0 when nothing was taken in.
func CalculateRTP(takenIn, paidOut decimal.Decimal) float64 {
	if !takenIn.IsPositive() {
		return 0
	}
	rtp, _ := paidOut.Div(takenIn).Mul(hundred).Round(2).Float64()
	return rtp
}

// ExpectedLossMultiplier is the average number of stakes lost per spin on the
// zero outer segment: Σ weight × inner / Σ weight (1.47 with the default table).
func ExpectedLossMultiplier() decimal.Decimal {
	var total, weighted int64
	for i, w := range InnerWeights {
		total += int64(w)
		weighted += int64(w) * InnerValues[i]
	}
	return decimal.NewFromInt(weighted).Div(decimal.NewFromInt(total))
}

// applySpin folds one settled spin into s.
func (s *Stats) applySpin(bet, appliedGain decimal.Decimal, won bool) {
	s.TotalSpins++
	s.TotalWagered = s.TotalWagered.Add(bet)
	if won {
		s.TotalWins++
		s.TotalWon = s.TotalWon.Add(appliedGain)
		if appliedGain.GreaterThan(s.BiggestWin) {
			s.BiggestWin = appliedGain
		}
	} else if appliedGain.IsNegative() {
		s.TotalLost = s.TotalLost.Add(appliedGain.Neg())
	}
	s.CurrentRTP = CalculateRTP(s.TotalWagered.Add(s.TotalLost), s.TotalWon)
}
