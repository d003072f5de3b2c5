package payments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/common"
	"roleta.com.br/server/internal/features/wallet"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}

type fixture struct {
	svc      *Service
	wallet   *wallet.Service
	gateway  *SimulatedGateway
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	w := wallet.NewService(wallet.NewRepository(), decimal.Zero)
	for _, id := range []string{"p1", "p2"} {
		if err := w.CreateWallet(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	gw := NewSimulatedGateway("a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", "ROLETA", "SAO PAULO")
	n := &recordingNotifier{}
	svc := NewService(NewRepository(), w, gw, n, Settings{
		Enabled:            true,
		MinDeposit:         decimal.NewFromInt(10),
		MaxDeposit:         decimal.NewFromInt(5000),
		MinWithdraw:        decimal.NewFromInt(20),
		DailyWithdrawLimit: decimal.NewFromInt(100),
		DepositTTL:         30 * time.Minute,
		PollInterval:       time.Millisecond,
		PollAttempts:       3,
	})
	return &fixture{svc: svc, wallet: w, gateway: gw, notifier: n}
}

func (f *fixture) balance(t *testing.T, playerID string) decimal.Decimal {
	t.Helper()
	b, err := f.wallet.GetBalance(context.Background(), playerID)
	if err != nil {
		t.Fatal(err)
	}
	return b.Balance
}

func (f *fixture) fund(t *testing.T, playerID string, amount int64) {
	t.Helper()
	ctx := context.Background()
	d, err := f.svc.CreateDeposit(ctx, playerID, DepositRequest{Amount: decimal.NewFromInt(amount)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ConfirmDeposit(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
}

func TestCreateDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, err := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.RequireFromString("25.90")})
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != StatusPending || d.ChargeID == "" {
		t.Errorf("deposit = %+v", d)
	}
	if !d.ExpiresAt.Equal(d.CreatedAt.Add(30 * time.Minute)) {
		t.Errorf("expiresAt = %v, want createdAt + 30m", d.ExpiresAt)
	}
	if err := VerifyBRCode(d.BRCode); err != nil || !strings.Contains(d.BRCode, "540525.90") {
		t.Errorf("brCode = %q, %v", d.BRCode, err)
	}
	if !f.balance(t, "p1").IsZero() {
		t.Error("creating a deposit must not credit the wallet")
	}
}

func TestCreateDepositRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(5)})
	var ve *common.ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Errorf("below minimum error = %v", err)
	}
	if _, err := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(5001)}); !errors.As(err, &ve) {
		t.Errorf("above maximum error = %v", err)
	}
	if _, err := f.svc.CreateDeposit(ctx, "ghost", DepositRequest{Amount: decimal.NewFromInt(50)}); !errors.Is(err, common.ErrWalletNotFound) {
		t.Errorf("unknown player error = %v", err)
	}

	f.svc.settings.Enabled = false
	if _, err := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(50)}); !errors.Is(err, common.ErrPixDisabled) {
		t.Errorf("disabled error = %v", err)
	}
}

func TestConfirmDepositIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(50)})
	for i := 0; i < 2; i++ {
		got, err := f.svc.ConfirmDeposit(ctx, d.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != StatusCompleted || got.CompletedAt == nil {
			t.Errorf("confirm #%d = %+v", i+1, got)
		}
	}

	if !f.balance(t, "p1").Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s, want 50 after two confirmations", f.balance(t, "p1"))
	}
	if len(f.notifier.messages) != 1 {
		t.Errorf("notifications = %d, want 1", len(f.notifier.messages))
	}
	if _, err := f.svc.ConfirmDeposit(ctx, "missing"); !errors.Is(err, common.ErrDepositNotFound) {
		t.Errorf("missing deposit error = %v", err)
	}
}

func TestConfirmExpiredDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(50)})
	f.svc.now = func() time.Time { return d.ExpiresAt.Add(time.Second) }

	if _, err := f.svc.ConfirmDeposit(ctx, d.ID); !errors.Is(err, common.ErrDepositExpired) {
		t.Fatalf("error = %v, want ErrDepositExpired", err)
	}
	got, err := f.svc.DepositStatus(ctx, "p1", d.ID)
	if err != nil || got.Status != StatusExpired {
		t.Errorf("status = %+v, %v", got, err)
	}
	if !f.balance(t, "p1").IsZero() {
		t.Error("expired deposit credited the wallet")
	}
}

func TestDepositStatusSyncsGateway(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(40)})

	if _, err := f.svc.DepositStatus(ctx, "p2", d.ID); !errors.Is(err, common.ErrDepositNotFound) {
		t.Errorf("other player error = %v", err)
	}

	got, err := f.svc.DepositStatus(ctx, "p1", d.ID)
	if err != nil || got.Status != StatusPending {
		t.Fatalf("before payment = %+v, %v", got, err)
	}

	if err := f.gateway.MarkPaid(d.ChargeID); err != nil {
		t.Fatal(err)
	}
	got, err = f.svc.DepositStatus(ctx, "p1", d.ID)
	if err != nil || got.Status != StatusCompleted {
		t.Fatalf("after payment = %+v, %v", got, err)
	}
	if !f.balance(t, "p1").Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance = %s, want 40", f.balance(t, "p1"))
	}
}

func TestPollDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("exhausted", func(t *testing.T) {
		f := newFixture(t)
		d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(40)})
		if _, err := f.svc.PollDeposit(ctx, "p1", d.ID); !errors.Is(err, common.ErrPollExhausted) {
			t.Errorf("error = %v, want ErrPollExhausted", err)
		}
	})

	t.Run("paid", func(t *testing.T) {
		f := newFixture(t)
		d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(40)})
		_ = f.gateway.MarkPaid(d.ChargeID)
		got, err := f.svc.PollDeposit(ctx, "p1", d.ID)
		if err != nil || got.Status != StatusCompleted {
			t.Errorf("PollDeposit = %+v, %v", got, err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t)
		d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(40)})
		f.svc.now = func() time.Time { return d.ExpiresAt.Add(time.Minute) }
		got, err := f.svc.PollDeposit(ctx, "p1", d.ID)
		if err != nil || got.Status != StatusExpired {
			t.Errorf("PollDeposit = %+v, %v", got, err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.svc.settings.PollInterval = time.Hour
		d, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(40)})

		cctx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		if _, err := f.svc.PollDeposit(cctx, "p1", d.ID); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.PollDeposit(ctx, "p1", "missing"); !errors.Is(err, common.ErrDepositNotFound) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestExpireStaleDeposits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d1, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(10)})
	d2, _ := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(20)})
	if _, err := f.svc.ConfirmDeposit(ctx, d2.ID); err != nil {
		t.Fatal(err)
	}

	if n := f.svc.ExpireStaleDeposits(ctx, time.Now()); n != 0 {
		t.Errorf("expired %d fresh deposits", n)
	}
	if n := f.svc.ExpireStaleDeposits(ctx, d1.ExpiresAt.Add(time.Second)); n != 1 {
		t.Errorf("expired %d deposits, want 1", n)
	}

	got, _ := f.svc.DepositStatus(ctx, "p1", d1.ID)
	if got.Status != StatusExpired {
		t.Errorf("d1 status = %s", got.Status)
	}
	got, _ = f.svc.DepositStatus(ctx, "p1", d2.ID)
	if got.Status != StatusCompleted {
		t.Errorf("d2 status = %s", got.Status)
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "p1", 200)

	req := WithdrawRequest{Amount: decimal.NewFromInt(60), PixKey: "529.982.247-25", PixKeyType: "cpf"}
	w1, err := f.svc.RequestWithdrawal(ctx, "p1", req)
	if err != nil {
		t.Fatal(err)
	}
	if w1.Status != StatusPending || w1.PixKey != "52998224725" {
		t.Errorf("withdrawal = %+v", w1)
	}
	if !f.balance(t, "p1").Equal(decimal.NewFromInt(140)) {
		t.Errorf("balance = %s, want 140 after debit", f.balance(t, "p1"))
	}

	// 60 + 60 > daily limit of 100
	if _, err := f.svc.RequestWithdrawal(ctx, "p1", req); !errors.Is(err, common.ErrDailyLimitExceeded) {
		t.Fatalf("second request error = %v, want ErrDailyLimitExceeded", err)
	}
	if !f.balance(t, "p1").Equal(decimal.NewFromInt(140)) {
		t.Error("rejected request touched the balance")
	}

	rejected, err := f.svc.RejectWithdrawal(ctx, w1.ID, "chave divergente")
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != StatusRejected || rejected.Reason != "chave divergente" || rejected.ProcessedAt == nil {
		t.Errorf("rejected = %+v", rejected)
	}
	if !f.balance(t, "p1").Equal(decimal.NewFromInt(200)) {
		t.Errorf("balance = %s, want 200 after refund", f.balance(t, "p1"))
	}

	w2, err := f.svc.RequestWithdrawal(ctx, "p1", req)
	if err != nil {
		t.Fatalf("request after refund: %v", err)
	}
	if pending := f.svc.PendingWithdrawals(ctx); len(pending) != 1 || pending[0].ID != w2.ID {
		t.Errorf("pending = %+v", pending)
	}

	done, err := f.svc.CompleteWithdrawal(ctx, w2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != StatusCompleted || !strings.HasPrefix(done.PayoutID, "E") {
		t.Errorf("completed = %+v", done)
	}
	if _, err := f.svc.CompleteWithdrawal(ctx, w2.ID); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("second completion error = %v", err)
	}
	if _, err := f.svc.RejectWithdrawal(ctx, w2.ID, "late"); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("reject after completion error = %v", err)
	}

	if list := f.svc.ListWithdrawals(ctx, "p1"); len(list) != 2 {
		t.Errorf("ListWithdrawals = %d entries, want 2", len(list))
	}
	if list := f.svc.ListWithdrawals(ctx, "p2"); len(list) != 0 {
		t.Errorf("p2 sees %d withdrawals", len(list))
	}

	if n := f.svc.ResetDailyLimits(ctx); n != 1 {
		t.Errorf("ResetDailyLimits = %d, want 1", n)
	}
	if _, err := f.svc.RequestWithdrawal(ctx, "p1", req); err != nil {
		t.Errorf("request after reset: %v", err)
	}
}

func TestWithdrawalInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "p1", 30)

	req := WithdrawRequest{Amount: decimal.NewFromInt(50), PixKey: "jogador@example.com", PixKeyType: "email"}
	if _, err := f.svc.RequestWithdrawal(ctx, "p1", req); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if total := f.svc.repo.DailyTotal(ctx, "p1"); !total.IsZero() {
		t.Errorf("daily total = %s, want reservation released", total)
	}
	if _, err := f.svc.CompleteWithdrawal(ctx, "missing"); !errors.Is(err, common.ErrWithdrawalNotFound) {
		t.Errorf("missing withdrawal error = %v", err)
	}
}

func TestRejectAfterDailyResetKeepsTodaysTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "p1", 400)

	req := WithdrawRequest{Amount: decimal.NewFromInt(100), PixKey: "529.982.247-25", PixKeyType: "cpf"}
	yesterday, err := f.svc.RequestWithdrawal(ctx, "p1", req)
	if err != nil {
		t.Fatal(err)
	}

	f.svc.ResetDailyLimits(ctx)

	if _, err := f.svc.RequestWithdrawal(ctx, "p1", req); err != nil {
		t.Fatalf("first withdrawal of the new day: %v", err)
	}
	if _, err := f.svc.RejectWithdrawal(ctx, yesterday.ID, "dados divergentes"); err != nil {
		t.Fatal(err)
	}

	if total := f.svc.repo.DailyTotal(ctx, "p1"); !total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("daily total = %s, want 100", total)
	}
	if _, err := f.svc.RequestWithdrawal(ctx, "p1", req); !errors.Is(err, common.ErrDailyLimitExceeded) {
		t.Fatalf("error = %v, want ErrDailyLimitExceeded", err)
	}
	if !f.balance(t, "p1").Equal(decimal.NewFromInt(300)) {
		t.Errorf("balance = %s, want 300 after refund", f.balance(t, "p1"))
	}
}
