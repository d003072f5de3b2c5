package players

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/progression"
	"roleta.com.br/server/internal/features/wallet"
)

func newService() *Service {
	w := wallet.NewService(wallet.NewRepository(), decimal.NewFromInt(100))
	p := progression.NewService(progression.NewRepository())
	return NewService(NewRepository(), w, p)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  João   Silva ", "João Silva", false},
		{"Jo", "Jo", false},
		{"J", "", true},
		{"   ", "", true},
		{strings.Repeat("á", 32), strings.Repeat("á", 32), false},
		{strings.Repeat("á", 33), "", true},
		{"bad\x00name", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeName(tt.in)
		if tt.wantErr {
			if !errors.Is(err, common.ErrInvalidPlayerName) {
				t.Errorf("NormalizeName(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	p, err := svc.Register(ctx, "Maria")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Name != "Maria" {
		t.Errorf("player = %+v", p)
	}
	if !svc.Exists(ctx, p.ID) || svc.Count(ctx) != 1 {
		t.Error("registered player not found")
	}

	profile, err := svc.Profile(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !profile.Wallet.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("starting balance = %s, want 100", profile.Wallet.Balance)
	}
	if profile.Level.Level != 1 || profile.Level.TotalXP != 0 || profile.Level.Title != "Novato" {
		t.Errorf("starting level = %+v", profile.Level)
	}

	if _, err := svc.Register(ctx, "x"); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("short name error = %v", err)
	}
}

func TestUnknownPlayer(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if svc.Exists(ctx, "ghost") {
		t.Error("ghost exists")
	}
	if _, err := svc.Get(ctx, "ghost"); !errors.Is(err, common.ErrPlayerNotFound) {
		t.Errorf("Get error = %v", err)
	}
	if _, err := svc.Profile(ctx, "ghost"); !errors.Is(err, common.ErrPlayerNotFound) {
		t.Errorf("Profile error = %v", err)
	}
}
