// service.go runs a spin end to end: validate the bet,
// debit it, draw the outcome, settle the gain, award XP and record the game.

package roulette

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/progression"
	"roleta.com.br/server/internal/features/wallet"
)

// Settings are the table limits.
type Settings struct {
	Enabled bool
	MinBet  decimal.Decimal
	MaxBet  decimal.Decimal
}

// Service is the roulette table.
type Service struct {
	repo        *Repository
	wallet      *wallet.Service
	progression *progression.Service
	gen         *Generator
	settings    Settings
	now         func() time.Time
}

// NewService creates the roulette service.
func NewService(repo *Repository, walletService *wallet.Service, progressionService *progression.Service, gen *Generator, settings Settings) *Service {
	return &Service{
		repo:        repo,
		wallet:      walletService,
		progression: progressionService,
		gen:         gen,
		settings:    settings,
		now:         time.Now,
	}
}

// ValidateBet checks the bet against the table limits.
func (s *Service) ValidateBet(bet decimal.Decimal) error {
	if !bet.IsPositive() || !bet.Equal(bet.Truncate(2)) {
		return common.ErrInvalidBet
	}
	if bet.LessThan(s.settings.MinBet) {
		return fmt.Errorf("%w: minimum is %s", common.ErrInvalidBet, common.FormatBRL(s.settings.MinBet))
	}
	if bet.GreaterThan(s.settings.MaxBet) {
		return fmt.Errorf("%w: maximum is %s", common.ErrInvalidBet, common.FormatBRL(s.settings.MaxBet))
	}
	return nil
}

// Play spins the wheel for a player.
func (s *Service) Play(ctx context.Context, playerID string, bet decimal.Decimal) (*PlayResult, error) {
	if !s.settings.Enabled {
		return nil, common.ErrRouletteDisabled
	}
	if err := s.ValidateBet(bet); err != nil {
		return nil, err
	}

	gameID := uuid.NewString()

	// === 1. Debit the bet ===
	betTx, err := s.wallet.Debit(ctx, playerID, bet, wallet.TxTypeRouletteBet, "Aposta na roleta", gameID)
	if err != nil {
		return nil, err
	}

	// === 2. Spin ===
	outcome, err := s.gen.Spin(bet)
	if err != nil {
		if _, refundErr := s.wallet.Credit(ctx, playerID, bet, wallet.TxTypeRouletteRefund, "Estorno de aposta", gameID); refundErr != nil {
			log.WithError(refundErr).WithField("player_id", playerID).Error("Failed to refund bet")
		}
		return nil, fmt.Errorf("spin: %w", err)
	}

	// === 3. Settle ===
	appliedGain := decimal.Zero
	balance := betTx.BalanceAfter
	switch {
	case outcome.Gain.IsPositive():
		tx, err := s.wallet.Credit(ctx, playerID, outcome.Gain, wallet.TxTypeRouletteWin, "Prêmio da roleta", gameID)
		if err != nil {
			return nil, fmt.Errorf("credit win: %w", err)
		}
		appliedGain, balance = tx.Amount, tx.BalanceAfter
	case outcome.Gain.IsNegative():
		tx, err := s.wallet.Adjust(ctx, playerID, outcome.Gain, wallet.TxTypeRouletteLoss, "Perda na roleta", gameID)
		if err != nil {
			return nil, fmt.Errorf("settle loss: %w", err)
		}
		if tx != nil {
			appliedGain, balance = tx.Amount, tx.BalanceAfter
		}
	}

	// === 4. XP ===
	// The game is recorded even when XP cannot be awarded.
	var (
		xp        int64
		level     int
		leveledUp bool
	)
	if award, err := s.progression.AwardSpin(ctx, playerID, bet, outcome.Won); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"player_id": playerID,
			"game_id":   gameID,
		}).Error("Failed to award XP, recording spin without XP")
	} else {
		xp, level, leveledUp = award.XP, award.After.Level, award.LeveledUp
	}

	// === 5. Record ===
	game := &Game{
		ID:           gameID,
		PlayerID:     playerID,
		Outcome:      outcome,
		AppliedGain:  appliedGain,
		BalanceAfter: balance,
		XPAwarded:    xp,
		CreatedAt:    s.now(),
	}
	s.repo.SaveGame(ctx, game)

	log.WithFields(log.Fields{
		"player_id": playerID,
		"game_id":   gameID,
		"bet":       bet.String(),
		"outer":     outcome.OuterMultiplier,
		"inner":     outcome.InnerMultiplier,
		"gain":      appliedGain.String(),
		"xp":        xp,
	}).Info("Roulette spin")

	return &PlayResult{
		GameID:      gameID,
		Outcome:     outcome,
		AppliedGain: appliedGain,
		Balance:     balance,
		XPAwarded:   xp,
		Level:       level,
		LeveledUp:   leveledUp,
	}, nil
}

// GetStats returns the player's statistics.
func (s *Service) GetStats(ctx context.Context, playerID string) Stats {
	return s.repo.GetStatsOrDefault(ctx, playerID)
}

// History returns the player's recent games, newest first.
func (s *Service) History(ctx context.Context, playerID string, limit int) []Game {
	return s.repo.GetHistory(ctx, playerID, limit)
}

// HouseStats aggregates every player's statistics.
func (s *Service) HouseStats(ctx context.Context) HouseStats {
	return s.repo.HouseStats(ctx)
}

// Settings returns the table limits.
func (s *Service) Settings() Settings {
	return s.settings
}
