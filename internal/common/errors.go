// errors.go defines the errors shared by every feature.
// Handlers use them to tell problem classes apart and pick a response status.

package common

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the root of every input-domain violation.
// Feature errors below wrap it, so errors.Is(err, ErrInvalidArgument) holds for all of them.
var ErrInvalidArgument = errors.New("invalid argument")

// Argument errors
var (
	// ErrInvalidBet — bet amount is zero, negative or outside the table limits
	ErrInvalidBet = fmt.Errorf("%w: bet amount must be positive", ErrInvalidArgument)
	// ErrNegativeXP — total XP below zero
	ErrNegativeXP = fmt.Errorf("%w: total xp must not be negative", ErrInvalidArgument)
	// ErrInvalidLevel — level below 1
	ErrInvalidLevel = fmt.Errorf("%w: level must be at least 1", ErrInvalidArgument)
	// ErrInvalidAmount — money amount is not positive or has more than two decimal places
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive with at most 2 decimal places", ErrInvalidArgument)
	// ErrInvalidWheelIndex — wheel segment index outside the table
	ErrInvalidWheelIndex = fmt.Errorf("%w: wheel index out of range", ErrInvalidArgument)
)

// Wallet errors
var (
	// ErrInsufficientBalance — not enough money in the wallet
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrWalletNotFound — no wallet for the player
	ErrWalletNotFound = errors.New("wallet not found")
)

// Player errors
var (
	// ErrPlayerNotFound — unknown player id
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidPlayerName — display name too short or too long
	ErrInvalidPlayerName = fmt.Errorf("%w: name must be 2 to 32 characters", ErrInvalidArgument)
)

// Payment errors
var (
	// ErrInvalidPixKey — PIX key does not match its declared type
	ErrInvalidPixKey = fmt.Errorf("%w: invalid pix key", ErrInvalidArgument)
	// ErrDepositNotFound — unknown deposit id
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrWithdrawalNotFound — unknown withdrawal id
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	// ErrDepositExpired — charge expired before payment
	ErrDepositExpired = errors.New("deposit expired")
	// ErrInvalidState — the payment is not in a state that allows the operation
	ErrInvalidState = errors.New("payment is not in a state that allows this operation")
	// ErrDailyLimitExceeded — withdrawals today would exceed the daily limit
	ErrDailyLimitExceeded = errors.New("daily withdrawal limit exceeded")
	// ErrPollExhausted — deposit still pending after the last polling attempt
	ErrPollExhausted = errors.New("deposit still pending after maximum polling attempts")
	// ErrPixDisabled — PIX payments switched off in config
	ErrPixDisabled = errors.New("pix payments are disabled")
	// ErrCallbackUnauthorized — gateway callback without the shared token, or callbacks not configured
	ErrCallbackUnauthorized = errors.New("callback not authorized")
)

// Admin errors
var (
	// ErrWrongPassword — operator password mismatch
	ErrWrongPassword = errors.New("wrong password")
	// ErrTooManyAttempts — too many failed logins, locked for an hour
	ErrTooManyAttempts = errors.New("too many attempts, wait 1 hour")
	// ErrSessionExpired — operator session missing or expired
	ErrSessionExpired = errors.New("session expired, log in again")
)

// Roulette errors
var (
	// ErrRouletteDisabled — roulette switched off in config
	ErrRouletteDisabled = errors.New("roulette is temporarily disabled")
)

// ValidationError is returned when a request body fails field validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrInvalidArgument).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
