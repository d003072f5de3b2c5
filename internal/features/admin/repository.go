// repository.go keeps sessions and login attempts in memory.

package admin

import (
	"context"
	"sync"
	"time"
)

// Repository stores operator sessions and login attempts.
type Repository struct {
	mu       sync.Mutex
	sessions map[string]*Session
	attempts []loginAttempt
}

// NewRepository creates an empty store.
func NewRepository() *Repository {
	return &Repository{sessions: make(map[string]*Session)}
}

// CreateSession stores a new session.
func (r *Repository) CreateSession(ctx context.Context, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.Token] = &cp
}

// GetActiveSession returns the session for token when it has not expired at
// now, and marks activity.
func (r *Repository) GetActiveSession(ctx context.Context, token string, now time.Time) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok || !now.Before(s.ExpiresAt) {
		return nil, false
	}
	s.LastActivity = now
	cp := *s
	return &cp, true
}

// DeleteSession removes a session.
func (r *Repository) DeleteSession(ctx context.Context, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// DeleteExpired removes sessions expired at now and attempts older than the
// lockout window; it returns the number of sessions removed.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for token, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, token)
			n++
		}
	}

	cutoff := now.Add(-lockoutWindow)
	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.At.After(cutoff) {
			kept = append(kept, a)
		}
	}
	r.attempts = kept
	return n
}

// ActiveSessions counts sessions still valid at now.
func (r *Repository) ActiveSessions(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.sessions {
		if now.Before(s.ExpiresAt) {
			n++
		}
	}
	return n
}

// LogAttempt records a login attempt.
func (r *Repository) LogAttempt(ctx context.Context, client string, at time.Time, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, loginAttempt{Client: client, At: at, Success: success})
}

// RecentFailures counts failed attempts by client after since.
func (r *Repository) RecentFailures(ctx context.Context, client string, since time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range r.attempts {
		if a.Client == client && !a.Success && a.At.After(since) {
			n++
		}
	}
	return n
}
