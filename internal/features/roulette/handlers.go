// handlers.go exposes the spin, history, stats and wheel endpoints.

package roulette

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/httpx"
)

const maxHistoryLimit = 100

// Handler serves roulette endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates the roulette handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SpinRequest is the body of POST /api/roulette/spin.
type SpinRequest struct {
	Bet decimal.Decimal `json:"bet"`
}

type wheelResponse struct {
	OuterValues            []int64         `json:"outerValues"`
	InnerValues            []int64         `json:"innerValues"`
	InnerWeights           []int           `json:"innerWeights"`
	OuterIndex             int             `json:"outerIndex"`             // every spin lands here
	ExpectedLossMultiplier decimal.Decimal `json:"expectedLossMultiplier"` // stakes lost per spin, bet included
	MinBet                 decimal.Decimal `json:"minBet"`
	MaxBet                 decimal.Decimal `json:"maxBet"`
	Enabled                bool            `json:"enabled"`
}

// HandleSpin handles POST /api/roulette/spin.
func (h *Handler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	var req SpinRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	result, err := h.service.Play(r.Context(), httpx.MustPlayerID(r), req.Bet)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleHistory handles GET /api/roulette/history?limit=N.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			httpx.WriteError(w, common.NewValidationError("limit", "must be between 1 and 100"))
			return
		}
		limit = n
	}
	httpx.WriteJSON(w, http.StatusOK, h.service.History(r.Context(), httpx.MustPlayerID(r), limit))
}

// HandleStats handles GET /api/roulette/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.GetStats(r.Context(), httpx.MustPlayerID(r)))
}

// HandleWheel handles GET /api/roulette/wheel.
func (h *Handler) HandleWheel(w http.ResponseWriter, r *http.Request) {
	st := h.service.Settings()
	httpx.WriteJSON(w, http.StatusOK, wheelResponse{
		OuterValues:            OuterValues,
		InnerValues:            InnerValues,
		InnerWeights:           InnerWeights,
		OuterIndex:             ZeroOuterIndex,
		ExpectedLossMultiplier: ExpectedLossMultiplier(),
		MinBet:                 st.MinBet,
		MaxBet:                 st.MaxBet,
		Enabled:                st.Enabled,
	})
}
