// repository.go stores balances and the transaction log in memory.
// Every balance change and its log entry are written under one lock.

package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
)

// Repository holds balances and transactions.
type Repository struct {
	mu           sync.RWMutex
	balances     map[string]*Balance
	transactions map[string][]Transaction
	now          func() time.Time
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		balances:     make(map[string]*Balance),
		transactions: make(map[string][]Transaction),
		now:          time.Now,
	}
}

// EnsureBalance creates a zero balance if the player has none.
// Returns true when a new wallet was created.
func (r *Repository) EnsureBalance(ctx context.Context, playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.balances[playerID]; ok {
		return false
	}
	now := r.now()
	r.balances[playerID] = &Balance{
		PlayerID:  playerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true
}

// GetBalance returns a copy of the player's balance.
func (r *Repository) GetBalance(ctx context.Context, playerID string) (*Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.balances[playerID]
	if !ok {
		return nil, common.ErrWalletNotFound
	}
	cp := *b
	return &cp, nil
}

// entry describes a balance change to apply atomically.
type entry struct {
	txType      string
	description string
	reference   string
	// clamp lets a debit take only what is left instead of failing.
	clamp bool
}

// apply adds delta to the balance, updates totals and appends a transaction.
// It returns the transaction actually recorded (Amount may be smaller than
// delta when clamp is set).
func (r *Repository) apply(ctx context.Context, playerID string, delta decimal.Decimal, e entry) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[playerID]
	if !ok {
		return nil, common.ErrWalletNotFound
	}

	next := b.Balance.Add(delta)
	if next.IsNegative() {
		if !e.clamp {
			return nil, common.ErrInsufficientBalance
		}
		delta = b.Balance.Neg()
		next = decimal.Zero
	}

	now := r.now()
	b.Balance = next
	b.UpdatedAt = now
	applyTotals(b, delta, e.txType)

	tx := Transaction{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		Amount:       delta,
		BalanceAfter: next,
		Type:         e.txType,
		Description:  e.description,
		Reference:    e.reference,
		CreatedAt:    now,
	}
	r.transactions[playerID] = append(r.transactions[playerID], tx)
	return &tx, nil
}

func applyTotals(b *Balance, delta decimal.Decimal, txType string) {
	switch txType {
	case TxTypeDeposit:
		b.TotalDeposited = b.TotalDeposited.Add(delta)
	case TxTypeWithdraw:
		b.TotalWithdrawn = b.TotalWithdrawn.Add(delta.Neg())
	case TxTypeWithdrawRefund:
		b.TotalWithdrawn = b.TotalWithdrawn.Sub(delta)
	case TxTypeRouletteBet:
		b.TotalWagered = b.TotalWagered.Add(delta.Neg())
	case TxTypeRouletteRefund:
		b.TotalWagered = b.TotalWagered.Sub(delta)
	case TxTypeRouletteLoss:
		b.TotalLost = b.TotalLost.Add(delta.Neg())
	case TxTypeRouletteWin:
		b.TotalWon = b.TotalWon.Add(delta)
	}
}

// GetTransactions returns the latest transactions, newest first.
func (r *Repository) GetTransactions(ctx context.Context, playerID string, limit int) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.balances[playerID]; !ok {
		return nil, common.ErrWalletNotFound
	}

	all := r.transactions[playerID]
	n := len(all)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]Transaction, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Totals sums every wallet; used for house statistics.
func (r *Repository) Totals(ctx context.Context) (players int, balance decimal.Decimal) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	balance = decimal.Zero
	for _, b := range r.balances {
		balance = balance.Add(b.Balance)
	}
	return len(r.balances), balance
}
