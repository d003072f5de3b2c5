// Package httpx holds the JSON plumbing shared by every feature handler:
// strict request decoding, response writing, error-to-status mapping and
// the request-scoped player id.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
)

// MaxBodyBytes caps request bodies; every request in this API is tiny.
const MaxBodyBytes = 64 << 10

// strictJSON rejects unknown fields so request shape is never trusted at runtime.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
	UseNumber:              true,
	CaseSensitive:          true,
}.Froze()

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Decode reads one JSON object from r into dst, rejecting unknown fields,
// trailing data and oversized bodies.
func Decode(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, MaxBodyBytes+1)
	data, err := io.ReadAll(body)
	if err != nil {
		return common.NewValidationError("body", "unreadable request body")
	}
	if len(data) > MaxBodyBytes {
		return common.NewValidationError("body", "request body too large")
	}
	if len(data) == 0 {
		return common.NewValidationError("body", "request body is empty")
	}

	if err := strictJSON.Unmarshal(data, dst); err != nil {
		return common.NewValidationError("body", fmt.Sprintf("malformed json: %v", err))
	}
	return nil
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := strictJSON.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write json response")
	}
}

// WriteError maps err to a status code and writes an ErrorResponse.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var ve *common.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		resp.Error = "internal error"
	}
	WriteJSON(w, status, resp)
}

// StatusFor classifies err into an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrWrongPassword),
		errors.Is(err, common.ErrSessionExpired),
		errors.Is(err, common.ErrCallbackUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrRouletteDisabled),
		errors.Is(err, common.ErrPixDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrPlayerNotFound),
		errors.Is(err, common.ErrWalletNotFound),
		errors.Is(err, common.ErrDepositNotFound),
		errors.Is(err, common.ErrWithdrawalNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInsufficientBalance),
		errors.Is(err, common.ErrInvalidState),
		errors.Is(err, common.ErrDepositExpired),
		errors.Is(err, common.ErrDailyLimitExceeded):
		return http.StatusConflict
	case errors.Is(err, common.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, common.ErrPollExhausted),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type ctxKey int

const playerIDKey ctxKey = iota

// WithPlayerID stores the authenticated player id in ctx.
func WithPlayerID(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, playerIDKey, playerID)
}

// PlayerID returns the player id set by the player filter.
func PlayerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(playerIDKey).(string)
	return id, ok && id != ""
}

// MustPlayerID is used by handlers mounted behind the player filter.
func MustPlayerID(r *http.Request) string {
	id, _ := PlayerID(r.Context())
	return id
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
