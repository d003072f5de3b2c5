// handlers.go serves registration and the profile.

package players

import (
	"net/http"

	"roleta.com.br/server/internal/httpx"
)

// Handler serves player endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates the players handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleRegister handles POST /api/players.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	p, err := h.service.Register(r.Context(), req.Name)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

// HandleMe handles GET /api/players/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), httpx.MustPlayerID(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}
