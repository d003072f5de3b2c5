// Package players is the player registry: registration, lookup and the
// profile view that joins wallet and progression.
// models.go describes the stored player.
package players

import "time"

// Player is a registered player.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterRequest is the body of POST /api/players.
type RegisterRequest struct {
	Name string `json:"name"`
}

const (
	minNameLen = 2
	maxNameLen = 32
)
