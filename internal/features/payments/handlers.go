// handlers.go serves the player-facing PIX endpoints.

package payments

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/httpx"
)

// Handler serves PIX endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates the payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreateDeposit handles POST /api/pix/deposits.
func (h *Handler) HandleCreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	d, err := h.service.CreateDeposit(r.Context(), httpx.MustPlayerID(r), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

// HandleDepositStatus handles GET /api/pix/deposits/{id}.
func (h *Handler) HandleDepositStatus(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.DepositStatus(r.Context(), httpx.MustPlayerID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleWaitDeposit handles GET /api/pix/deposits/{id}/wait. It blocks until
// the deposit settles, polling stops or the client goes away.
func (h *Handler) HandleWaitDeposit(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.PollDeposit(r.Context(), httpx.MustPlayerID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleCreateWithdrawal handles POST /api/pix/withdrawals.
func (h *Handler) HandleCreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	wd, err := h.service.RequestWithdrawal(r.Context(), httpx.MustPlayerID(r), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, wd.Public())
}

// HandleListWithdrawals handles GET /api/pix/withdrawals.
func (h *Handler) HandleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	list := h.service.ListWithdrawals(r.Context(), httpx.MustPlayerID(r))
	for i := range list {
		list[i] = list[i].Public()
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// HandleGetWithdrawal handles GET /api/pix/withdrawals/{id}.
func (h *Handler) HandleGetWithdrawal(w http.ResponseWriter, r *http.Request) {
	wd, err := h.service.GetWithdrawal(r.Context(), httpx.MustPlayerID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wd.Public())
}

// CallbackTokenHeader carries the shared secret on gateway callbacks.
const CallbackTokenHeader = "X-Callback-Token"

// HandleCallback handles POST /api/pix/callback, called by the gateway
// when a charge changes state.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AuthorizeCallback(r.Header.Get(CallbackTokenHeader)); err != nil {
		log.WithField("client", httpx.ClientIP(r)).Warn("Rejected gateway callback")
		httpx.WriteError(w, err)
		return
	}

	var req CallbackRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	d, err := h.service.ApplyCallback(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}
