package admin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roleta.com.br/server/internal/common"
)

var testParams = HashParams{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := HashPassword(password, testParams)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := mustHash(t, "s3nha")

	if !strings.HasPrefix(h, "$argon2id$v=19$m=64,t=1,p=1$") {
		t.Errorf("hash = %q", h)
	}
	if !VerifyPassword("s3nha", h) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("senha", h) {
		t.Error("wrong password accepted")
	}

	other := mustHash(t, "s3nha")
	if other == h {
		t.Error("two hashes share a salt")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	bad := []string{
		"",
		"plain",
		"$argon2i$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
	}
	for _, h := range bad {
		if VerifyPassword("x", h) {
			t.Errorf("VerifyPassword accepted %q", h)
		}
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(), Settings{
		PasswordHash: mustHash(t, "s3nha"),
		SessionTTL:   time.Hour,
		MaxAttempts:  3,
	})
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Login(ctx, "10.0.0.1", "s3nha")
	if err != nil {
		t.Fatal(err)
	}
	if session.Token == "" || !session.ExpiresAt.Equal(session.AuthenticatedAt.Add(time.Hour)) {
		t.Errorf("session = %+v", session)
	}

	if _, err := svc.Authenticate(ctx, session.Token); err != nil {
		t.Errorf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nope"); !errors.Is(err, common.ErrSessionExpired) {
		t.Errorf("unknown token error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, ""); !errors.Is(err, common.ErrSessionExpired) {
		t.Errorf("empty token error = %v", err)
	}
	if svc.ActiveSessions(ctx) != 1 {
		t.Errorf("ActiveSessions = %d", svc.ActiveSessions(ctx))
	}

	svc.Logout(ctx, session.Token)
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, common.ErrSessionExpired) {
		t.Errorf("after logout error = %v", err)
	}
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	for i := 0; i < 3; i++ {
		if _, err := svc.Login(ctx, "10.0.0.1", "errada"); !errors.Is(err, common.ErrWrongPassword) {
			t.Fatalf("attempt %d error = %v", i+1, err)
		}
	}
	if _, err := svc.Login(ctx, "10.0.0.1", "s3nha"); !errors.Is(err, common.ErrTooManyAttempts) {
		t.Errorf("locked client error = %v, want ErrTooManyAttempts", err)
	}
	if _, err := svc.Login(ctx, "10.0.0.2", "s3nha"); err != nil {
		t.Errorf("other client blocked: %v", err)
	}

	svc.now = func() time.Time { return start.Add(lockoutWindow + time.Second) }
	if _, err := svc.Login(ctx, "10.0.0.1", "s3nha"); err != nil {
		t.Errorf("login after lockout window: %v", err)
	}
}

func TestSweepSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	s1, _ := svc.Login(ctx, "a", "s3nha")
	svc.now = func() time.Time { return start.Add(30 * time.Minute) }
	s2, _ := svc.Login(ctx, "b", "s3nha")

	svc.now = func() time.Time { return start.Add(time.Hour) }
	if n := svc.SweepSessions(ctx); n != 1 {
		t.Errorf("SweepSessions = %d, want 1", n)
	}
	if _, err := svc.Authenticate(ctx, s1.Token); err == nil {
		t.Error("expired session still valid")
	}
	if _, err := svc.Authenticate(ctx, s2.Token); err != nil {
		t.Errorf("live session swept: %v", err)
	}
}
