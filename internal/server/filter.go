// filter.go admits only registered players to the
// player-scoped routes.

package server

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/httpx"
)

// PlayerHeader carries the player id on every player-scoped request.
const PlayerHeader = "X-Player-ID"

// playerDirectory is what the filter needs from the players service.
type playerDirectory interface {
	Exists(ctx context.Context, id string) bool
}

// PlayerFilter checks X-Player-ID against the registry.
type PlayerFilter struct {
	players playerDirectory
}

// NewPlayerFilter creates the filter.
func NewPlayerFilter(players playerDirectory) *PlayerFilter {
	return &PlayerFilter{players: players}
}

// Middleware stores the player id in the request context or rejects the
// request: 400 without a header, 404 for an unknown id.
func (f *PlayerFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(PlayerHeader))
		logger := log.WithFields(log.Fields{
			"component": "PlayerFilter",
			"path":      r.URL.Path,
			"player_id": id,
		})

		if id == "" {
			logger.Debug("deny: missing player header")
			httpx.WriteError(w, common.NewValidationError(PlayerHeader, "header required"))
			return
		}
		if !f.players.Exists(r.Context(), id) {
			logger.Info("deny: unknown player")
			httpx.WriteError(w, common.ErrPlayerNotFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(httpx.WithPlayerID(r.Context(), id)))
	})
}
