// service.go handles operator login, brute-force lockout
// and session lifecycle.

package admin

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
)

// Settings configure operator authentication.
type Settings struct {
	PasswordHash string
	SessionTTL   time.Duration
	MaxAttempts  int
}

// Service authenticates operators.
type Service struct {
	repo     *Repository
	settings Settings
	now      func() time.Time
}

// NewService creates the admin service.
func NewService(repo *Repository, settings Settings) *Service {
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 3
	}
	return &Service{repo: repo, settings: settings, now: time.Now}
}

// Login verifies the password for client and opens a session. After
// MaxAttempts failures within an hour the client is locked out.
func (s *Service) Login(ctx context.Context, client, password string) (*Session, error) {
	now := s.now()

	if s.repo.RecentFailures(ctx, client, now.Add(-lockoutWindow)) >= s.settings.MaxAttempts {
		log.WithField("client", client).Warn("Admin login blocked")
		return nil, common.ErrTooManyAttempts
	}

	match := VerifyPassword(password, s.settings.PasswordHash)
	s.repo.LogAttempt(ctx, client, now, match)
	if !match {
		log.WithField("client", client).Warn("Admin login failed")
		return nil, common.ErrWrongPassword
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	session := &Session{
		Token:           token,
		Client:          client,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(s.settings.SessionTTL),
		LastActivity:    now,
	}
	s.repo.CreateSession(ctx, session)

	log.WithField("client", client).Info("Admin logged in")
	return session, nil
}

// Authenticate resolves a bearer token to an active session.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, common.ErrSessionExpired
	}
	session, ok := s.repo.GetActiveSession(ctx, token, s.now())
	if !ok {
		return nil, common.ErrSessionExpired
	}
	return session, nil
}

// Logout ends a session.
func (s *Service) Logout(ctx context.Context, token string) {
	s.repo.DeleteSession(ctx, token)
}

// SweepSessions drops expired sessions and stale login attempts.
func (s *Service) SweepSessions(ctx context.Context) int {
	n := s.repo.DeleteExpired(ctx, s.now())
	if n > 0 {
		log.WithField("count", n).Debug("Expired admin sessions removed")
	}
	return n
}

// ActiveSessions counts open sessions.
func (s *Service) ActiveSessions(ctx context.Context) int {
	return s.repo.ActiveSessions(ctx, s.now())
}
