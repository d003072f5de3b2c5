// repository.go keeps each player's total XP in memory.
// Nothing survives a restart.

package progression

import (
	"context"
	"sort"
	"sync"
)

// Record is the only stored progression state: a player's total XP.
type Record struct {
	PlayerID string
	TotalXP  int64
}

// Repository stores total XP per player.
type Repository struct {
	mu sync.RWMutex
	xp map[string]int64
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{xp: make(map[string]int64)}
}

// Ensure creates a zero-XP record if none exists.
func (r *Repository) Ensure(ctx context.Context, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.xp[playerID]; !ok {
		r.xp[playerID] = 0
	}
}

// Get returns the player's total XP and whether a record exists.
func (r *Repository) Get(ctx context.Context, playerID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	xp, ok := r.xp[playerID]
	return xp, ok
}

// Add increments total XP and returns the values before and after.
func (r *Repository) Add(ctx context.Context, playerID string, amount int64) (before, after int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before = r.xp[playerID]
	after = addSaturating(before, amount)
	r.xp[playerID] = after
	return before, after
}

// Top returns up to limit records ordered by XP descending, ties by player id.
func (r *Repository) Top(ctx context.Context, limit int) []Record {
	r.mu.RLock()
	records := make([]Record, 0, len(r.xp))
	for id, xp := range r.xp {
		records = append(records, Record{PlayerID: id, TotalXP: xp})
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].TotalXP != records[j].TotalXP {
			return records[i].TotalXP > records[j].TotalXP
		}
		return records[i].PlayerID < records[j].PlayerID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
