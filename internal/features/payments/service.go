// service.go holds the deposit and withdrawal rules.

package payments

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/wallet"
	"roleta.com.br/server/internal/notify"
)

// Settings are the PIX limits and polling parameters.
type Settings struct {
	Enabled            bool
	MinDeposit         decimal.Decimal
	MaxDeposit         decimal.Decimal
	MinWithdraw        decimal.Decimal
	DailyWithdrawLimit decimal.Decimal
	DepositTTL         time.Duration
	PollInterval       time.Duration
	PollAttempts       int
	CallbackToken      string // shared secret the gateway sends in X-Callback-Token; empty disables callbacks
}

// Service runs PIX deposits and withdrawals against the wallet.
type Service struct {
	repo     *Repository
	wallet   *wallet.Service
	gateway  Gateway
	notifier notify.Notifier
	settings Settings
	now      func() time.Time
}

// NewService creates the payments service.
func NewService(repo *Repository, walletService *wallet.Service, gateway Gateway, notifier notify.Notifier, settings Settings) *Service {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Service{
		repo:     repo,
		wallet:   walletService,
		gateway:  gateway,
		notifier: notifier,
		settings: settings,
		now:      time.Now,
	}
}

// CreateDeposit issues a PIX charge for the player.
func (s *Service) CreateDeposit(ctx context.Context, playerID string, req DepositRequest) (*Deposit, error) {
	if !s.settings.Enabled {
		return nil, common.ErrPixDisabled
	}
	if err := req.Validate(s.settings.MinDeposit, s.settings.MaxDeposit); err != nil {
		return nil, err
	}
	if _, err := s.wallet.GetBalance(ctx, playerID); err != nil {
		return nil, err
	}

	now := s.now()
	id := uuid.NewString()
	charge, err := s.gateway.CreateCharge(ctx, ChargeRequest{
		TxID:      strings.ReplaceAll(id, "-", ""),
		Amount:    req.Amount,
		ExpiresAt: now.Add(s.settings.DepositTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	d := &Deposit{
		ID:        id,
		PlayerID:  playerID,
		Amount:    req.Amount,
		Status:    StatusPending,
		ChargeID:  charge.ID,
		BRCode:    charge.BRCode,
		CreatedAt: now,
		ExpiresAt: now.Add(s.settings.DepositTTL),
	}
	s.repo.SaveDeposit(ctx, d)

	log.WithFields(log.Fields{
		"player_id":  playerID,
		"deposit_id": id,
		"amount":     req.Amount.String(),
	}).Info("Deposit created")
	return d, nil
}

// DepositStatus returns the player's deposit, syncing it with the gateway
// and expiring it when its deadline has passed.
func (s *Service) DepositStatus(ctx context.Context, playerID, id string) (*Deposit, error) {
	d, err := s.repo.GetDeposit(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.PlayerID != playerID {
		return nil, common.ErrDepositNotFound
	}
	if d.Status != StatusPending {
		return d, nil
	}

	if s.now().After(d.ExpiresAt) {
		return s.expire(ctx, id)
	}

	st, err := s.gateway.ChargeStatus(ctx, d.ChargeID)
	if err != nil {
		return nil, fmt.Errorf("charge status: %w", err)
	}
	if st == StatusCompleted {
		return s.ConfirmDeposit(ctx, id)
	}
	return d, nil
}

// ConfirmDeposit marks a deposit paid and credits the wallet. Confirming a
// completed deposit again returns it unchanged without a second credit.
func (s *Service) ConfirmDeposit(ctx context.Context, id string) (*Deposit, error) {
	now := s.now()
	alreadyDone := false

	d, err := s.repo.UpdateDeposit(ctx, id, func(d *Deposit) error {
		switch d.Status {
		case StatusCompleted:
			alreadyDone = true
			return nil
		case StatusExpired:
			return common.ErrDepositExpired
		case StatusPending:
			if now.After(d.ExpiresAt) {
				return common.ErrDepositExpired
			}
			d.Status = StatusCompleted
			d.CompletedAt = &now
			return nil
		default:
			return common.ErrInvalidState
		}
	})
	if errors.Is(err, common.ErrDepositExpired) {
		if _, expErr := s.expire(ctx, id); expErr != nil {
			log.WithError(expErr).WithField("deposit_id", id).Warn("Failed to expire deposit")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if alreadyDone {
		return d, nil
	}

	if _, err := s.wallet.Credit(ctx, d.PlayerID, d.Amount, wallet.TxTypeDeposit, "Depósito PIX", d.ID); err != nil {
		// put it back so it can be confirmed again
		if _, rbErr := s.repo.UpdateDeposit(ctx, id, func(d *Deposit) error {
			d.Status = StatusPending
			d.CompletedAt = nil
			return nil
		}); rbErr != nil {
			log.WithError(rbErr).WithField("deposit_id", id).Error("Failed to roll back deposit")
		}
		return nil, fmt.Errorf("credit deposit: %w", err)
	}

	log.WithFields(log.Fields{
		"player_id":  d.PlayerID,
		"deposit_id": d.ID,
		"amount":     d.Amount.String(),
	}).Info("Deposit confirmed")
	s.notifier.Notify(ctx, fmt.Sprintf("💰 Depósito confirmado: <b>%s</b> (jogador %s)", common.FormatBRL(d.Amount), d.PlayerID))
	return d, nil
}

// PollDeposit checks the deposit up to PollAttempts times, PollInterval
// apart, until it leaves pending. It returns ErrPollExhausted when it is
// still pending after the last attempt, or ctx.Err() when cancelled.
func (s *Service) PollDeposit(ctx context.Context, playerID, id string) (*Deposit, error) {
	attempts := s.settings.PollAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		d, err := s.DepositStatus(ctx, playerID, id)
		switch {
		case err == nil && d.Status.Terminal():
			return d, nil
		case errors.Is(err, common.ErrDepositNotFound):
			return nil, err
		case err != nil:
			log.WithError(err).WithFields(log.Fields{
				"deposit_id": id,
				"attempt":    attempt,
			}).Warn("Deposit poll failed")
		}

		if attempt == attempts {
			break
		}
		timer := time.NewTimer(s.settings.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, common.ErrPollExhausted
}

// RequestWithdrawal debits the wallet and queues a payout for an operator.
func (s *Service) RequestWithdrawal(ctx context.Context, playerID string, req WithdrawRequest) (*Withdrawal, error) {
	if !s.settings.Enabled {
		return nil, common.ErrPixDisabled
	}
	keyType, key, err := req.Validate(s.settings.MinWithdraw)
	if err != nil {
		return nil, err
	}

	period, err := s.repo.ReserveDaily(ctx, playerID, req.Amount, s.settings.DailyWithdrawLimit)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if _, err := s.wallet.Debit(ctx, playerID, req.Amount, wallet.TxTypeWithdraw, "Saque PIX", id); err != nil {
		s.repo.ReleaseDaily(ctx, playerID, req.Amount, period)
		return nil, err
	}

	w := &Withdrawal{
		ID:         id,
		PlayerID:   playerID,
		Amount:     req.Amount,
		PixKey:     key,
		PixKeyType: keyType,
		Status:     StatusPending,
		CreatedAt:  s.now(),

		limitPeriod: period,
	}
	s.repo.SaveWithdrawal(ctx, w)

	log.WithFields(log.Fields{
		"player_id":     playerID,
		"withdrawal_id": id,
		"amount":        req.Amount.String(),
		"key":           MaskPixKey(key),
	}).Info("Withdrawal requested")
	s.notifier.Notify(ctx, fmt.Sprintf("🏧 Saque pendente: <b>%s</b> para %s (%s)", common.FormatBRL(req.Amount), MaskPixKey(key), keyType))
	return w, nil
}

// CompleteWithdrawal sends the payout of a pending withdrawal.
func (s *Service) CompleteWithdrawal(ctx context.Context, id string) (*Withdrawal, error) {
	w, err := s.repo.UpdateWithdrawal(ctx, id, func(w *Withdrawal) error {
		if w.Status != StatusPending {
			return common.ErrInvalidState
		}
		w.Status = StatusProcessing
		return nil
	})
	if err != nil {
		return nil, err
	}

	payoutID, err := s.gateway.SendPayout(ctx, Payout{
		Reference: w.ID,
		Amount:    w.Amount,
		Key:       w.PixKey,
		KeyType:   w.PixKeyType,
	})
	if err != nil {
		if _, rbErr := s.repo.UpdateWithdrawal(ctx, id, func(w *Withdrawal) error {
			w.Status = StatusPending
			return nil
		}); rbErr != nil {
			log.WithError(rbErr).WithField("withdrawal_id", id).Error("Failed to roll back withdrawal")
		}
		return nil, fmt.Errorf("send payout: %w", err)
	}

	now := s.now()
	w, err = s.repo.UpdateWithdrawal(ctx, id, func(w *Withdrawal) error {
		w.Status = StatusCompleted
		w.PayoutID = payoutID
		w.ProcessedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"withdrawal_id": id,
		"payout_id":     payoutID,
	}).Info("Withdrawal completed")
	return w, nil
}

// RejectWithdrawal cancels a pending withdrawal and refunds the wallet.
func (s *Service) RejectWithdrawal(ctx context.Context, id, reason string) (*Withdrawal, error) {
	now := s.now()
	w, err := s.repo.UpdateWithdrawal(ctx, id, func(w *Withdrawal) error {
		if w.Status != StatusPending {
			return common.ErrInvalidState
		}
		w.Status = StatusRejected
		w.Reason = reason
		w.ProcessedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.wallet.Credit(ctx, w.PlayerID, w.Amount, wallet.TxTypeWithdrawRefund, "Saque recusado", w.ID); err != nil {
		return nil, fmt.Errorf("refund withdrawal: %w", err)
	}
	if !s.repo.ReleaseDaily(ctx, w.PlayerID, w.Amount, w.limitPeriod) {
		log.WithField("withdrawal_id", id).Debug("Rejected withdrawal belongs to a past limit period")
	}

	log.WithFields(log.Fields{
		"withdrawal_id": id,
		"player_id":     w.PlayerID,
		"reason":        reason,
	}).Info("Withdrawal rejected")
	return w, nil
}

// GetWithdrawal returns one of the player's withdrawals.
func (s *Service) GetWithdrawal(ctx context.Context, playerID, id string) (*Withdrawal, error) {
	w, err := s.repo.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.PlayerID != playerID {
		return nil, common.ErrWithdrawalNotFound
	}
	return w, nil
}

// AuthorizeCallback checks the token the gateway sent with a callback.
func (s *Service) AuthorizeCallback(token string) error {
	want := s.settings.CallbackToken
	if want == "" || subtle.ConstantTimeCompare([]byte(token), []byte(want)) != 1 {
		return common.ErrCallbackUnauthorized
	}
	return nil
}

// ApplyCallback moves a deposit to the state the gateway reported:
// paid charges are confirmed, cancelled or expired ones expire, pending is a no-op.
func (s *Service) ApplyCallback(ctx context.Context, req CallbackRequest) (*Deposit, error) {
	action, err := req.Validate()
	if err != nil {
		return nil, err
	}
	d, err := s.repo.GetDeposit(ctx, req.DepositID)
	if err != nil {
		return nil, err
	}
	if req.Amount.Valid && !req.Amount.Decimal.Equal(d.Amount) {
		return nil, common.NewValidationError("amount", "does not match the charge")
	}

	logger := log.WithFields(log.Fields{
		"deposit_id":     d.ID,
		"status":         req.Status,
		"transaction_id": req.TransactionID,
	})
	logger.Info("Gateway callback received")

	switch action {
	case callbackConfirm:
		return s.ConfirmDeposit(ctx, d.ID)
	case callbackExpire:
		return s.cancelDeposit(ctx, d.ID)
	default:
		return d, nil
	}
}

// ListWithdrawals returns the player's withdrawals, newest first.
func (s *Service) ListWithdrawals(ctx context.Context, playerID string) []Withdrawal {
	return s.repo.ListWithdrawals(ctx, func(w *Withdrawal) bool { return w.PlayerID == playerID })
}

// PendingWithdrawals returns every withdrawal waiting for an operator.
func (s *Service) PendingWithdrawals(ctx context.Context) []Withdrawal {
	return s.repo.ListWithdrawals(ctx, func(w *Withdrawal) bool { return w.Status == StatusPending })
}

// ExpireStaleDeposits expires every pending deposit whose deadline is not
// after now and returns how many were expired.
func (s *Service) ExpireStaleDeposits(ctx context.Context, now time.Time) int {
	expired := 0
	for _, id := range s.repo.PendingDepositsExpiredAt(ctx, now) {
		if _, err := s.expire(ctx, id); err != nil {
			log.WithError(err).WithField("deposit_id", id).Warn("Failed to expire deposit")
			continue
		}
		expired++
	}
	return expired
}

// ResetDailyLimits starts a new withdrawal day for everyone.
func (s *Service) ResetDailyLimits(ctx context.Context) int {
	return s.repo.ResetDaily(ctx)
}

// PendingCounts returns pending deposits and pending withdrawals.
func (s *Service) PendingCounts(ctx context.Context) (int, int) {
	return s.repo.Counts(ctx)
}

// cancelDeposit expires a pending deposit; expiring it twice is a no-op.
func (s *Service) cancelDeposit(ctx context.Context, id string) (*Deposit, error) {
	return s.repo.UpdateDeposit(ctx, id, func(d *Deposit) error {
		switch d.Status {
		case StatusPending:
			d.Status = StatusExpired
			return nil
		case StatusExpired:
			return nil
		default:
			return common.ErrInvalidState
		}
	})
}

func (s *Service) expire(ctx context.Context, id string) (*Deposit, error) {
	return s.repo.UpdateDeposit(ctx, id, func(d *Deposit) error {
		if d.Status == StatusPending {
			d.Status = StatusExpired
		}
		return nil
	})
}
