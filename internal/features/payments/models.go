// Package payments implements simulated PIX deposits and withdrawals.
// Charges and payouts go through a Gateway; the bundled SimulatedGateway
// keeps everything in memory and leaves settlement to an operator.
// models.go holds the payment records and request bodies.
package payments

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
)

// Status is the lifecycle state of a deposit or withdrawal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
	StatusRejected   Status = "rejected"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusRejected
}

// Deposit is a PIX charge the player pays to fund the wallet.
type Deposit struct {
	ID          string          `json:"id"`
	PlayerID    string          `json:"playerId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      Status          `json:"status"`
	ChargeID    string          `json:"chargeId"`
	BRCode      string          `json:"brCode"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Withdrawal is a payout request to the player's PIX key.
type Withdrawal struct {
	ID          string          `json:"id"`
	PlayerID    string          `json:"playerId"`
	Amount      decimal.Decimal `json:"amount"`
	PixKey      string          `json:"pixKey"`
	PixKeyType  PixKeyType      `json:"pixKeyType"`
	Status      Status          `json:"status"`
	PayoutID    string          `json:"payoutId,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`

	limitPeriod uint64 // daily-limit period the amount was reserved in
}

// Public returns a copy safe to show the player: the PIX key is masked.
func (w Withdrawal) Public() Withdrawal {
	w.PixKey = MaskPixKey(w.PixKey)
	return w
}

// DepositRequest is the body of POST /api/pix/deposits.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Validate checks the amount against the deposit bounds.
func (r DepositRequest) Validate(min, max decimal.Decimal) error {
	if err := validateMoney(r.Amount); err != nil {
		return err
	}
	if r.Amount.LessThan(min) {
		return common.NewValidationError("amount", "minimum deposit is "+common.FormatBRL(min))
	}
	if r.Amount.GreaterThan(max) {
		return common.NewValidationError("amount", "maximum deposit is "+common.FormatBRL(max))
	}
	return nil
}

// WithdrawRequest is the body of POST /api/pix/withdrawals.
type WithdrawRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	PixKey     string          `json:"pixKey"`
	PixKeyType string          `json:"pixKeyType"`
}

// Validate checks every field and returns the normalized key.
func (r WithdrawRequest) Validate(min decimal.Decimal) (PixKeyType, string, error) {
	if err := validateMoney(r.Amount); err != nil {
		return "", "", err
	}
	if r.Amount.LessThan(min) {
		return "", "", common.NewValidationError("amount", "minimum withdrawal is "+common.FormatBRL(min))
	}
	if r.PixKeyType == "" {
		return "", "", common.NewValidationError("pixKeyType", "required")
	}
	keyType, ok := ParsePixKeyType(r.PixKeyType)
	if !ok {
		return "", "", common.NewValidationError("pixKeyType", "must be one of cpf, cnpj, email, phone, random")
	}
	if r.PixKey == "" {
		return "", "", common.NewValidationError("pixKey", "required")
	}
	key, err := NormalizePixKey(keyType, r.PixKey)
	if err != nil {
		return "", "", common.NewValidationError("pixKey", "not a valid "+string(keyType)+" key")
	}
	return keyType, key, nil
}

// Callback actions derived from the gateway status.
const (
	callbackConfirm = "confirm"
	callbackExpire  = "expire"
	callbackIgnore  = "ignore"
)

var callbackActions = map[string]string{
	"approved":  callbackConfirm,
	"completed": callbackConfirm,
	"paid":      callbackConfirm,
	"expired":   callbackExpire,
	"cancelled": callbackExpire,
	"canceled":  callbackExpire,
	"pending":   callbackIgnore,
}

// CallbackRequest is the body the gateway posts to /api/pix/callback when a
// charge changes state. Amount is optional; when present it must match the charge.
type CallbackRequest struct {
	DepositID     string              `json:"depositId"`
	Status        string              `json:"status"`
	Amount        decimal.NullDecimal `json:"amount"`
	TransactionID string              `json:"transactionId"`
}

// Validate checks the fields and returns the action for the status.
func (r CallbackRequest) Validate() (string, error) {
	if strings.TrimSpace(r.DepositID) == "" {
		return "", common.NewValidationError("depositId", "required")
	}
	if r.Status == "" {
		return "", common.NewValidationError("status", "required")
	}
	action, ok := callbackActions[strings.ToLower(r.Status)]
	if !ok {
		return "", common.NewValidationError("status", "unknown status "+r.Status)
	}
	if r.Amount.Valid {
		if err := validateMoney(r.Amount.Decimal); err != nil {
			return "", err
		}
	}
	return action, nil
}

func validateMoney(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return common.NewValidationError("amount", "at most two decimal places")
	}
	return nil
}
