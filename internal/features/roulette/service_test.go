package roulette

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/progression"
	"roleta.com.br/server/internal/features/wallet"
)

type fixture struct {
	svc         *Service
	wallet      *wallet.Service
	progression *progression.Service
}

func newFixture(t *testing.T, starting string, src RandomSource) *fixture {
	t.Helper()
	ctx := context.Background()

	w := wallet.NewService(wallet.NewRepository(), decimal.RequireFromString(starting))
	p := progression.NewService(progression.NewRepository())
	if err := w.CreateWallet(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	p.CreateProgress(ctx, "p1")

	svc := NewService(NewRepository(10), w, p, NewGenerator(src), Settings{
		Enabled: true,
		MinBet:  decimal.NewFromInt(1),
		MaxBet:  decimal.NewFromInt(1000),
	})
	return &fixture{svc: svc, wallet: w, progression: p}
}

func TestPlaySmallestTier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100", fixedSource(0))

	res, err := f.svc.Play(ctx, "p1", decimal.NewFromInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Balance.Equal(decimal.NewFromInt(90)) || !res.AppliedGain.IsZero() {
		t.Errorf("result = %+v, want balance 90 and zero gain", res)
	}
	if res.XPAwarded != 10 || res.Level != 1 {
		t.Errorf("xp = %d level = %d, want 10 xp at level 1", res.XPAwarded, res.Level)
	}

	txs, _ := f.wallet.History(ctx, "p1", 0)
	if len(txs) != 2 || txs[0].Type != wallet.TxTypeRouletteBet {
		t.Errorf("transactions = %+v, want bet on top of starting bonus", txs)
	}
}

func TestPlayLargestTierLosesExtra(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100", fixedSource(0.99))

	res, err := f.svc.Play(ctx, "p1", decimal.NewFromInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if !res.AppliedGain.Equal(decimal.NewFromInt(-30)) || !res.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("result = %+v, want gain -30 and balance 60", res)
	}

	b, _ := f.wallet.GetBalance(ctx, "p1")
	if !b.TotalWagered.Equal(decimal.NewFromInt(10)) || !b.TotalLost.Equal(decimal.NewFromInt(30)) {
		t.Errorf("wallet totals = %+v", b)
	}
}

func TestPlayClampsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "15", fixedSource(0.99))

	res, err := f.svc.Play(ctx, "p1", decimal.NewFromInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Balance.IsZero() || !res.AppliedGain.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("result = %+v, want balance clamped to 0 with gain -5", res)
	}
	if !res.Outcome.Gain.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("outcome gain = %s, want the unclamped -30", res.Outcome.Gain)
	}
}

func TestPlayRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		bet  string
		want error
	}{
		{"below minimum", "0.50", common.ErrInvalidBet},
		{"above maximum", "1000.01", common.ErrInvalidBet},
		{"sub-cent", "1.005", common.ErrInvalidBet},
		{"more than balance", "50", common.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "20", fixedSource(0))
			_, err := f.svc.Play(ctx, "p1", decimal.RequireFromString(tt.bet))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			b, _ := f.wallet.GetBalance(ctx, "p1")
			if !b.Balance.Equal(decimal.NewFromInt(20)) {
				t.Errorf("balance = %s, want untouched 20", b.Balance)
			}
		})
	}

	f := newFixture(t, "20", fixedSource(0))
	if _, err := f.svc.Play(ctx, "ghost", decimal.NewFromInt(1)); !errors.Is(err, common.ErrWalletNotFound) {
		t.Errorf("unknown player error = %v", err)
	}
}

func TestPlayDisabled(t *testing.T) {
	f := newFixture(t, "20", fixedSource(0))
	f.svc.settings.Enabled = false

	if _, err := f.svc.Play(context.Background(), "p1", decimal.NewFromInt(1)); !errors.Is(err, common.ErrRouletteDisabled) {
		t.Errorf("error = %v, want ErrRouletteDisabled", err)
	}
}

func TestPlayRecordsHistoryAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000", fixedSource(0.7))

	for i := 0; i < 12; i++ {
		if _, err := f.svc.Play(ctx, "p1", decimal.NewFromInt(5)); err != nil {
			t.Fatal(err)
		}
	}

	history := f.svc.History(ctx, "p1", 0)
	if len(history) != 10 {
		t.Errorf("history length = %d, want the ring size 10", len(history))
	}
	if len(f.svc.History(ctx, "p1", 3)) != 3 {
		t.Error("History limit ignored")
	}

	st := f.svc.GetStats(ctx, "p1")
	if st.TotalSpins != 12 || st.TotalWins != 0 {
		t.Errorf("stats = %+v, want 12 spins and no wins", st)
	}
	// inner x2 on every spin: 5 staked and 5 more lost each time
	if !st.TotalWagered.Equal(decimal.NewFromInt(60)) || !st.TotalLost.Equal(decimal.NewFromInt(60)) {
		t.Errorf("stats totals = %+v", st)
	}
	if st.CurrentRTP != 0 {
		t.Errorf("RTP = %v, want 0", st.CurrentRTP)
	}

	house := f.svc.HouseStats(ctx)
	if house.Players != 1 || house.TotalSpins != 12 {
		t.Errorf("house = %+v", house)
	}

	data, _ := f.progression.Get(ctx, "p1")
	if data.TotalXP != 60 {
		t.Errorf("total xp = %d, want 60", data.TotalXP)
	}
}

func TestStatsApplyWin(t *testing.T) {
	var st Stats
	st.applySpin(decimal.NewFromInt(10), decimal.NewFromInt(40), true)
	st.applySpin(decimal.NewFromInt(10), decimal.NewFromInt(-10), false)

	if st.TotalWins != 1 || !st.BiggestWin.Equal(decimal.NewFromInt(40)) {
		t.Errorf("stats = %+v", st)
	}
	// 40 paid out over 20 staked + 10 extra lost
	if st.CurrentRTP != 133.33 {
		t.Errorf("RTP = %v, want 133.33", st.CurrentRTP)
	}
}

func TestPlayRecordsGameWhenXPFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100", fixedSource(0.7))
	// wallet without a progression record
	if err := f.wallet.CreateWallet(ctx, "p2"); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Play(ctx, "p2", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.XPAwarded != 0 || res.LeveledUp {
		t.Errorf("result = %+v, want no XP", res)
	}
	if !res.Balance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("balance = %s, want 80", res.Balance)
	}

	history := f.svc.History(ctx, "p2", 10)
	if len(history) != 1 || history[0].ID != res.GameID || !history[0].AppliedGain.Equal(decimal.NewFromInt(-10)) {
		t.Errorf("history = %+v", history)
	}
	if stats := f.svc.GetStats(ctx, "p2"); stats.TotalSpins != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
