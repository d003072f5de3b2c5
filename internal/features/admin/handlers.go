// handlers.go serves the operator endpoints. Everything but
// login sits behind RequireSession.

package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/payments"
	"roleta.com.br/server/internal/features/players"
	"roleta.com.br/server/internal/features/roulette"
	"roleta.com.br/server/internal/features/wallet"
	"roleta.com.br/server/internal/httpx"
)

// Handler serves operator endpoints.
type Handler struct {
	service  *Service
	payments *payments.Service
	wallet   *wallet.Service
	roulette *roulette.Service
	players  *players.Service
}

// NewHandler creates the admin handler.
func NewHandler(service *Service, paymentsService *payments.Service, walletService *wallet.Service, rouletteService *roulette.Service, playersService *players.Service) *Handler {
	return &Handler{
		service:  service,
		payments: paymentsService,
		wallet:   walletService,
		roulette: rouletteService,
		players:  playersService,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type adjustRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type statsResponse struct {
	Players            int                 `json:"players"`
	Wallets            int                 `json:"wallets"`
	MoneyInWallets     decimal.Decimal     `json:"moneyInWallets"`
	Roulette           roulette.HouseStats `json:"roulette"`
	PendingDeposits    int                 `json:"pendingDeposits"`
	PendingWithdrawals int                 `json:"pendingWithdrawals"`
	ActiveSessions     int                 `json:"activeSessions"`
}

// RequireSession rejects requests without a valid bearer token.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.service.Authenticate(r.Context(), bearerToken(r)); err != nil {
			httpx.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}

// HandleLogin handles POST /api/admin/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.Password == "" {
		httpx.WriteError(w, common.NewValidationError("password", "required"))
		return
	}

	session, err := h.service.Login(r.Context(), httpx.ClientIP(r), req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session)
}

// HandleLogout handles POST /api/admin/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// HandleConfirmDeposit handles POST /api/admin/deposits/{id}/confirm.
func (h *Handler) HandleConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	d, err := h.payments.ConfirmDeposit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandlePendingWithdrawals handles GET /api/admin/withdrawals/pending.
func (h *Handler) HandlePendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.payments.PendingWithdrawals(r.Context()))
}

// HandleCompleteWithdrawal handles POST /api/admin/withdrawals/{id}/complete.
func (h *Handler) HandleCompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	wd, err := h.payments.CompleteWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wd)
}

// HandleRejectWithdrawal handles POST /api/admin/withdrawals/{id}/reject.
func (h *Handler) HandleRejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		httpx.WriteError(w, common.NewValidationError("reason", "required"))
		return
	}

	wd, err := h.payments.RejectWithdrawal(r.Context(), chi.URLParam(r, "id"), reason)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wd)
}

// HandleAdjust handles POST /api/admin/players/{id}/adjust.
func (h *Handler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.Amount.IsZero() || !req.Amount.Equal(req.Amount.Truncate(2)) {
		httpx.WriteError(w, common.NewValidationError("amount", "non-zero with at most two decimal places"))
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		httpx.WriteError(w, common.NewValidationError("reason", "required"))
		return
	}

	playerID := chi.URLParam(r, "id")
	if !h.players.Exists(r.Context(), playerID) {
		httpx.WriteError(w, common.ErrPlayerNotFound)
		return
	}

	tx, err := h.wallet.Adjust(r.Context(), playerID, req.Amount, wallet.TxTypeAdminAdjust, reason, "admin")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	log.WithFields(log.Fields{
		"player_id": playerID,
		"delta":     common.FormatSignedBRL(tx.Amount),
		"reason":    reason,
	}).Warn("Balance adjusted by operator")
	httpx.WriteJSON(w, http.StatusOK, tx)
}

// HandleStats handles GET /api/admin/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallets, money := h.wallet.Totals(ctx)
	pendingDeposits, pendingWithdrawals := h.payments.PendingCounts(ctx)

	httpx.WriteJSON(w, http.StatusOK, statsResponse{
		Players:            h.players.Count(ctx),
		Wallets:            wallets,
		MoneyInWallets:     money,
		Roulette:           h.roulette.HouseStats(ctx),
		PendingDeposits:    pendingDeposits,
		PendingWithdrawals: pendingWithdrawals,
		ActiveSessions:     h.service.ActiveSessions(ctx),
	})
}
