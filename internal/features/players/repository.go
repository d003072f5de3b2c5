// repository.go keeps players in memory.

package players

import (
	"context"
	"sync"

	"roleta.com.br/server/internal/common"
)

// Repository stores players by id.
type Repository struct {
	mu      sync.RWMutex
	players map[string]*Player
}

// NewRepository creates an empty registry.
func NewRepository() *Repository {
	return &Repository{players: make(map[string]*Player)}
}

// Create stores a new player.
func (r *Repository) Create(ctx context.Context, p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.players[p.ID] = &cp
}

// GetByID returns a copy of the player.
func (r *Repository) GetByID(ctx context.Context, id string) (*Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return nil, common.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

// Exists reports whether id is registered.
func (r *Repository) Exists(ctx context.Context, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[id]
	return ok
}

// Count returns the number of registered players.
func (r *Repository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
