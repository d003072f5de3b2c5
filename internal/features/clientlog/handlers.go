package clientlog

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/httpx"
)

// Handler ingests client log entries.
type Handler struct {
	playerHeader string
}

// NewHandler creates the handler. playerHeader names the header whose value,
// when present, is attached to the entry as the claimed player id.
func NewHandler(playerHeader string) *Handler {
	return &Handler{playerHeader: playerHeader}
}

type ingestResponse struct {
	Status string `json:"status"`
}

// HandleIngest handles POST /api/logs.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var entry Entry
	if err := httpx.Decode(r, &entry); err != nil {
		httpx.WriteError(w, err)
		return
	}
	level, err := entry.Validate()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	fields := log.Fields{
		"component": "client",
		"client":    httpx.ClientIP(r),
	}
	for k, v := range entry.Context {
		fields["ctx_"+k] = v
	}
	if entry.Source != "" {
		fields["source"] = entry.Source
	}
	if entry.Timestamp != nil {
		fields["client_time"] = entry.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
	}
	if id := strings.TrimSpace(r.Header.Get(h.playerHeader)); id != "" {
		fields["claimed_player_id"] = id
	}
	if strings.EqualFold(entry.Level, "critical") {
		fields["critical"] = true
	}

	log.WithFields(fields).Log(level, strings.TrimSpace(entry.Message))
	httpx.WriteJSON(w, http.StatusAccepted, ingestResponse{Status: "received"})
}
