// repository.go stores deposits, withdrawals and the
// per-player daily withdrawal totals in memory.

package payments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
)

// Repository is the in-memory payment store.
type Repository struct {
	mu          sync.RWMutex
	deposits    map[string]*Deposit
	withdrawals map[string]*Withdrawal
	dailyTotals map[string]decimal.Decimal
	period      uint64 // bumped by ResetDaily
}

// NewRepository creates an empty store.
func NewRepository() *Repository {
	return &Repository{
		deposits:    make(map[string]*Deposit),
		withdrawals: make(map[string]*Withdrawal),
		dailyTotals: make(map[string]decimal.Decimal),
	}
}

// SaveDeposit stores a new deposit.
func (r *Repository) SaveDeposit(ctx context.Context, d *Deposit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.deposits[d.ID] = &cp
}

// GetDeposit returns a copy of the deposit.
func (r *Repository) GetDeposit(ctx context.Context, id string) (*Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deposits[id]
	if !ok {
		return nil, common.ErrDepositNotFound
	}
	cp := *d
	return &cp, nil
}

// UpdateDeposit runs fn on the stored deposit under the write lock. The
// change is kept only when fn returns nil.
func (r *Repository) UpdateDeposit(ctx context.Context, id string, fn func(d *Deposit) error) (*Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deposits[id]
	if !ok {
		return nil, common.ErrDepositNotFound
	}
	cp := *d
	if err := fn(&cp); err != nil {
		return nil, err
	}
	*d = cp
	return &cp, nil
}

// PendingDepositsExpiredAt lists pending deposits whose deadline is not after now.
func (r *Repository) PendingDepositsExpiredAt(ctx context.Context, now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, d := range r.deposits {
		if d.Status == StatusPending && !d.ExpiresAt.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SaveWithdrawal stores a new withdrawal.
func (r *Repository) SaveWithdrawal(ctx context.Context, w *Withdrawal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.withdrawals[w.ID] = &cp
}

// GetWithdrawal returns a copy of the withdrawal.
func (r *Repository) GetWithdrawal(ctx context.Context, id string) (*Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.withdrawals[id]
	if !ok {
		return nil, common.ErrWithdrawalNotFound
	}
	cp := *w
	return &cp, nil
}

// UpdateWithdrawal runs fn on the stored withdrawal under the write lock.
func (r *Repository) UpdateWithdrawal(ctx context.Context, id string, fn func(w *Withdrawal) error) (*Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.withdrawals[id]
	if !ok {
		return nil, common.ErrWithdrawalNotFound
	}
	cp := *w
	if err := fn(&cp); err != nil {
		return nil, err
	}
	*w = cp
	return &cp, nil
}

// ListWithdrawals returns the withdrawals matching keep, newest first.
func (r *Repository) ListWithdrawals(ctx context.Context, keep func(w *Withdrawal) bool) []Withdrawal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Withdrawal, 0)
	for _, w := range r.withdrawals {
		if keep(w) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ReserveDaily adds amount to the player's total for today unless that
// would exceed limit. It returns the period the reservation belongs to.
func (r *Repository) ReserveDaily(ctx context.Context, playerID string, amount, limit decimal.Decimal) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.dailyTotals[playerID].Add(amount)
	if next.GreaterThan(limit) {
		return r.period, common.ErrDailyLimitExceeded
	}
	r.dailyTotals[playerID] = next
	return r.period, nil
}

// ReleaseDaily gives back a reservation made in period, never going below
// zero. Reservations from a period already reset are ignored and reported false.
func (r *Repository) ReleaseDaily(ctx context.Context, playerID string, amount decimal.Decimal, period uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if period != r.period {
		return false
	}

	next := r.dailyTotals[playerID].Sub(amount)
	if !next.IsPositive() {
		delete(r.dailyTotals, playerID)
		return true
	}
	r.dailyTotals[playerID] = next
	return true
}

// DailyTotal returns what the player has withdrawn today.
func (r *Repository) DailyTotal(ctx context.Context, playerID string) decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dailyTotals[playerID]
}

// ResetDaily clears every daily total and returns how many were cleared.
func (r *Repository) ResetDaily(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.dailyTotals)
	r.dailyTotals = make(map[string]decimal.Decimal)
	r.period++
	return n
}

// Counts returns the number of pending deposits and pending withdrawals.
func (r *Repository) Counts(ctx context.Context) (pendingDeposits, pendingWithdrawals int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.deposits {
		if d.Status == StatusPending {
			pendingDeposits++
		}
	}
	for _, w := range r.withdrawals {
		if w.Status == StatusPending {
			pendingWithdrawals++
		}
	}
	return pendingDeposits, pendingWithdrawals
}
