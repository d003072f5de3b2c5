// Package wallet manages each player's simulated balance in reais.
// models.go describes balances and transactions.
package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the wallet of one player. Every player has exactly one.
type Balance struct {
	PlayerID       string          `json:"playerId"`
	Balance        decimal.Decimal `json:"balance"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
	TotalWagered   decimal.Decimal `json:"totalWagered"`
	TotalWon       decimal.Decimal `json:"totalWon"`
	TotalLost      decimal.Decimal `json:"totalLost"` // losses beyond the stake itself
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Transaction is one money movement. Amount is signed: credits are positive,
// debits negative.
type Transaction struct {
	ID           string          `json:"id"`
	PlayerID     string          `json:"playerId"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Type         string          `json:"type"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference,omitempty"` // spin, deposit or withdrawal id
	CreatedAt    time.Time       `json:"createdAt"`
}

// Transaction types
const (
	TxTypeDeposit        = "deposit"         // PIX deposit confirmed
	TxTypeWithdraw       = "withdraw"        // PIX withdrawal requested
	TxTypeWithdrawRefund = "withdraw_refund" // withdrawal rejected, money returned
	TxTypeRouletteBet    = "roulette_bet"    // bet debited at spin start
	TxTypeRouletteWin    = "roulette_win"    // payout credited
	TxTypeRouletteLoss   = "roulette_loss"   // extra loss beyond the bet
	TxTypeRouletteRefund = "roulette_refund" // bet returned after a failed spin
	TxTypeAdminAdjust    = "admin_adjust"    // manual correction by an operator
	TxTypeStartingBonus  = "starting_bonus"  // initial balance at registration
)

// centScale is the number of decimal places money may carry.
const centScale = 2
