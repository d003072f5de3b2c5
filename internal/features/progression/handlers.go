// handlers.go exposes level, milestone and ranking endpoints.

package progression

import (
	"net/http"
	"strconv"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/httpx"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// Handler serves progression endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates the progression handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type levelResponse struct {
	LevelData
	Progress float64 `json:"progress"`
}

type milestoneResponse struct {
	Level     int        `json:"level"`
	Milestone *Milestone `json:"milestone"`
	// XPRemaining is nil when no milestone is left.
	XPRemaining *int64 `json:"xpRemaining"`
}

// HandleLevel handles GET /api/progression.
func (h *Handler) HandleLevel(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Get(r.Context(), httpx.MustPlayerID(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, levelResponse{LevelData: data, Progress: data.Progress()})
}

// HandleMilestone handles GET /api/progression/milestone.
func (h *Handler) HandleMilestone(w http.ResponseWriter, r *http.Request) {
	m, data, err := h.service.NextMilestone(r.Context(), httpx.MustPlayerID(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	resp := milestoneResponse{Level: data.Level, Milestone: m}
	if m != nil {
		remaining := m.RequiredXP - data.TotalXP
		resp.XPRemaining = &remaining
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLeaderboard handles GET /api/progression/leaderboard?limit=N.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLeaderboardSize {
			httpx.WriteError(w, common.NewValidationError("limit", "must be between 1 and 100"))
			return
		}
		limit = n
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}
