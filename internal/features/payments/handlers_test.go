package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"roleta.com.br/server/internal/httpx"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Post("/api/pix/callback", h.HandleCallback)
	r.Group(func(pr chi.Router) {
		pr.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := httpx.WithPlayerID(r.Context(), r.Header.Get("X-Player-ID"))
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		pr.Post("/api/pix/withdrawals", h.HandleCreateWithdrawal)
		pr.Get("/api/pix/withdrawals", h.HandleListWithdrawals)
		pr.Get("/api/pix/withdrawals/{id}", h.HandleGetWithdrawal)
	})
	return r
}

func serve(h http.Handler, method, path, body string, header map[string]string) (int, map[string]any, []any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out any
	_ = jsoniter.Unmarshal(rec.Body.Bytes(), &out)
	obj, _ := out.(map[string]any)
	list, _ := out.([]any)
	return rec.Code, obj, list
}

func TestWithdrawalResponsesMaskKey(t *testing.T) {
	f := newFixture(t)
	f.fund(t, "p1", 100)
	h := newTestRouter(f.svc)
	p1 := map[string]string{"X-Player-ID": "p1"}

	code, created, _ := serve(h, http.MethodPost, "/api/pix/withdrawals",
		`{"amount":"30","pixKey":"529.982.247-25","pixKeyType":"cpf"}`, p1)
	if code != http.StatusAccepted || created["pixKey"] != "529*****725" {
		t.Fatalf("create = %d %v", code, created)
	}
	id, _ := created["id"].(string)

	code, one, _ := serve(h, http.MethodGet, "/api/pix/withdrawals/"+id, "", p1)
	if code != http.StatusOK || one["pixKey"] != "529*****725" || one["status"] != "pending" {
		t.Errorf("get = %d %v", code, one)
	}

	code, _, list := serve(h, http.MethodGet, "/api/pix/withdrawals", "", p1)
	if code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list = %d %v", code, list)
	}
	if item, _ := list[0].(map[string]any); item["pixKey"] != "529*****725" {
		t.Errorf("listed key = %v", item["pixKey"])
	}

	// the stored key stays usable for the payout
	stored, err := f.svc.repo.GetWithdrawal(context.Background(), id)
	if err != nil || stored.PixKey != "52998224725" {
		t.Errorf("stored = %+v, %v", stored, err)
	}
}

func TestGetWithdrawalOwnership(t *testing.T) {
	f := newFixture(t)
	f.fund(t, "p1", 100)
	h := newTestRouter(f.svc)

	w, err := f.svc.RequestWithdrawal(context.Background(), "p1",
		WithdrawRequest{Amount: decimal.NewFromInt(25), PixKey: "jogador@example.com", PixKeyType: "email"})
	if err != nil {
		t.Fatal(err)
	}

	if code, _, _ := serve(h, http.MethodGet, "/api/pix/withdrawals/"+w.ID, "", map[string]string{"X-Player-ID": "p2"}); code != http.StatusNotFound {
		t.Errorf("other player = %d, want 404", code)
	}
	if code, _, _ := serve(h, http.MethodGet, "/api/pix/withdrawals/missing", "", map[string]string{"X-Player-ID": "p1"}); code != http.StatusNotFound {
		t.Errorf("missing = %d, want 404", code)
	}
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.settings.CallbackToken = "segredo"
	h := newTestRouter(f.svc)
	gw := map[string]string{CallbackTokenHeader: "segredo"}

	paid, err := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatal(err)
	}
	cancelled, err := f.svc.CreateDeposit(ctx, "p1", DepositRequest{Amount: decimal.NewFromInt(20)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		body   string
		header map[string]string
		want   int
		status string
	}{
		{"missing token", `{"depositId":"` + paid.ID + `","status":"approved"}`, nil, http.StatusUnauthorized, ""},
		{"wrong token", `{"depositId":"` + paid.ID + `","status":"approved"}`, map[string]string{CallbackTokenHeader: "x"}, http.StatusUnauthorized, ""},
		{"unknown status", `{"depositId":"` + paid.ID + `","status":"refunded"}`, gw, http.StatusBadRequest, ""},
		{"amount mismatch", `{"depositId":"` + paid.ID + `","status":"approved","amount":49.99}`, gw, http.StatusBadRequest, ""},
		{"unknown deposit", `{"depositId":"nope","status":"approved"}`, gw, http.StatusNotFound, ""},
		{"pending is a no-op", `{"depositId":"` + paid.ID + `","status":"pending"}`, gw, http.StatusOK, "pending"},
		{"approved", `{"depositId":"` + paid.ID + `","status":"approved","amount":50,"transactionId":"E123"}`, gw, http.StatusOK, "completed"},
		{"approved twice", `{"depositId":"` + paid.ID + `","status":"completed"}`, gw, http.StatusOK, "completed"},
		{"cancelled", `{"depositId":"` + cancelled.ID + `","status":"cancelled"}`, gw, http.StatusOK, "expired"},
		{"paid after cancel", `{"depositId":"` + cancelled.ID + `","status":"approved"}`, gw, http.StatusConflict, ""},
		{"cancel after paid", `{"depositId":"` + paid.ID + `","status":"expired"}`, gw, http.StatusConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, _ := serve(h, http.MethodPost, "/api/pix/callback", tt.body, tt.header)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (%v)", code, tt.want, body)
			}
			if tt.status != "" && body["status"] != tt.status {
				t.Errorf("deposit status = %v, want %s", body["status"], tt.status)
			}
		})
	}

	if !f.balance(t, "p1").Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s, want a single credit of 50", f.balance(t, "p1"))
	}
}

func TestCallbackDisabledWithoutToken(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.AuthorizeCallback(""); err == nil {
		t.Error("empty token must not authorize when callbacks are not configured")
	}
}
