// Package admin is the operator surface: password login with lockout,
// bearer sessions and the endpoints that settle PIX payments.
// models.go describes sessions and login attempts.
package admin

import "time"

// Session is an authenticated operator session.
type Session struct {
	Token           string    `json:"token"`
	Client          string    `json:"-"`
	AuthenticatedAt time.Time `json:"authenticatedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
	LastActivity    time.Time `json:"-"`
}

// loginAttempt is one login try, kept for brute-force protection.
type loginAttempt struct {
	Client  string
	At      time.Time
	Success bool
}

// lockoutWindow is how far back failed attempts count.
const lockoutWindow = time.Hour
