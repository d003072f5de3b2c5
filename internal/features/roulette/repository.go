// repository.go keeps spin history and statistics in memory.

package roulette

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Repository stores a bounded history per player plus per-player statistics.
type Repository struct {
	mu          sync.RWMutex
	historySize int
	history     map[string][]Game
	stats       map[string]*Stats
}

// NewRepository creates a repository that keeps the last historySize games per player.
func NewRepository(historySize int) *Repository {
	if historySize <= 0 {
		historySize = 1
	}
	return &Repository{
		historySize: historySize,
		history:     make(map[string][]Game),
		stats:       make(map[string]*Stats),
	}
}

// SaveGame appends a game and updates the player's statistics.
func (r *Repository) SaveGame(ctx context.Context, game *Game) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := append(r.history[game.PlayerID], *game)
	if len(h) > r.historySize {
		h = h[len(h)-r.historySize:]
	}
	r.history[game.PlayerID] = h

	st, ok := r.stats[game.PlayerID]
	if !ok {
		st = &Stats{PlayerID: game.PlayerID}
		r.stats[game.PlayerID] = st
	}
	st.applySpin(game.Outcome.Bet, game.AppliedGain, game.Outcome.Won)
	st.UpdatedAt = game.CreatedAt
}

// GetHistory returns up to limit games, newest first.
func (r *Repository) GetHistory(ctx context.Context, playerID string, limit int) []Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := r.history[playerID]
	if limit <= 0 || limit > len(h) {
		limit = len(h)
	}
	out := make([]Game, 0, limit)
	for i := len(h) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h[i])
	}
	return out
}

// GetStatsOrDefault returns the player's statistics, or empty ones.
func (r *Repository) GetStatsOrDefault(ctx context.Context, playerID string) Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if st, ok := r.stats[playerID]; ok {
		return *st
	}
	return Stats{PlayerID: playerID}
}

// HouseStats sums the statistics of every player.
func (r *Repository) HouseStats(ctx context.Context) HouseStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hs := HouseStats{
		Players:      len(r.stats),
		TotalWagered: decimal.Zero,
		TotalLost:    decimal.Zero,
		TotalWon:     decimal.Zero,
	}
	for _, st := range r.stats {
		hs.TotalSpins += st.TotalSpins
		hs.TotalWagered = hs.TotalWagered.Add(st.TotalWagered)
		hs.TotalLost = hs.TotalLost.Add(st.TotalLost)
		hs.TotalWon = hs.TotalWon.Add(st.TotalWon)
	}
	hs.RTP = CalculateRTP(hs.TotalWagered.Add(hs.TotalLost), hs.TotalWon)
	return hs
}
