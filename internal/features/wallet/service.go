// service.go contains the wallet business rules:
// amount validation, credits, debits and the clamped adjustment used to settle spins.

package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
)

const defaultHistorySize = 20

// Service manages player wallets.
type Service struct {
	repo            *Repository
	startingBalance decimal.Decimal
}

// NewService creates the wallet service. startingBalance is credited to new wallets.
func NewService(repo *Repository, startingBalance decimal.Decimal) *Service {
	return &Service{repo: repo, startingBalance: startingBalance}
}

// ValidateAmount checks that amount is positive with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(centScale)) {
		return common.ErrInvalidAmount
	}
	return nil
}

// CreateWallet opens a wallet for a new player and credits the starting balance.
func (s *Service) CreateWallet(ctx context.Context, playerID string) error {
	if !s.repo.EnsureBalance(ctx, playerID) {
		return nil
	}
	if s.startingBalance.IsPositive() {
		_, err := s.repo.apply(ctx, playerID, s.startingBalance, entry{
			txType:      TxTypeStartingBonus,
			description: "Saldo inicial",
		})
		return err
	}
	return nil
}

// GetBalance returns the player's wallet.
func (s *Service) GetBalance(ctx context.Context, playerID string) (*Balance, error) {
	return s.repo.GetBalance(ctx, playerID)
}

// Credit adds money to a wallet.
func (s *Service) Credit(ctx context.Context, playerID string, amount decimal.Decimal, txType, description, reference string) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return s.repo.apply(ctx, playerID, amount, entry{txType: txType, description: description, reference: reference})
}

// Debit removes money from a wallet; fails with ErrInsufficientBalance
// instead of going below zero.
func (s *Service) Debit(ctx context.Context, playerID string, amount decimal.Decimal, txType, description, reference string) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	tx, err := s.repo.apply(ctx, playerID, amount.Neg(), entry{txType: txType, description: description, reference: reference})
	if err != nil {
		return nil, fmt.Errorf("debit %s: %w", common.FormatBRL(amount), err)
	}
	return tx, nil
}

// Adjust applies a signed delta. A negative delta larger than the balance
// takes the balance to exactly zero; the returned transaction carries the
// delta actually applied. A zero delta records nothing and returns nil.
func (s *Service) Adjust(ctx context.Context, playerID string, delta decimal.Decimal, txType, description, reference string) (*Transaction, error) {
	if delta.IsZero() {
		if _, err := s.repo.GetBalance(ctx, playerID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if !delta.Equal(delta.Truncate(centScale)) {
		return nil, common.ErrInvalidAmount
	}

	tx, err := s.repo.apply(ctx, playerID, delta, entry{
		txType:      txType,
		description: description,
		reference:   reference,
		clamp:       true,
	})
	if err != nil {
		return nil, err
	}
	if !tx.Amount.Equal(delta) {
		log.WithFields(log.Fields{
			"player_id": playerID,
			"requested": delta.String(),
			"applied":   tx.Amount.String(),
		}).Debug("Adjustment clamped at zero balance")
	}
	return tx, nil
}

// History returns the latest transactions, newest first.
func (s *Service) History(ctx context.Context, playerID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return s.repo.GetTransactions(ctx, playerID, limit)
}

// Totals returns the number of wallets and the money held in them.
func (s *Service) Totals(ctx context.Context) (int, decimal.Decimal) {
	return s.repo.Totals(ctx)
}
