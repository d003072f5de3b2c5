// handlers.go serves balance and statement endpoints.

package wallet

import (
	"net/http"
	"strconv"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/httpx"
)

const maxHistorySize = 100

// Handler serves wallet endpoints.
type Handler struct {
	service  *Service
	currency string
}

// NewHandler creates the wallet handler.
func NewHandler(service *Service, currency string) *Handler {
	return &Handler{service: service, currency: currency}
}

type balanceResponse struct {
	*Balance
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

// HandleBalance handles GET /api/wallet.
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBalance(r.Context(), httpx.MustPlayerID(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResponse{
		Balance:   b,
		Currency:  h.currency,
		Formatted: common.FormatBRL(b.Balance),
	})
}

// HandleTransactions handles GET /api/wallet/transactions?limit=N.
func (h *Handler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistorySize {
			httpx.WriteError(w, common.NewValidationError("limit", "must be between 1 and 100"))
			return
		}
		limit = n
	}

	txs, err := h.service.History(r.Context(), httpx.MustPlayerID(r), limit)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}
