package roulette

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleWheelDisclosesOdds(t *testing.T) {
	f := newFixture(t, "100", fixedSource(0))
	rec := httptest.NewRecorder()
	NewHandler(f.svc).HandleWheel(rec, httptest.NewRequest(http.MethodGet, "/api/roulette/wheel", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		OuterValues            []int64 `json:"outerValues"`
		InnerWeights           []int   `json:"innerWeights"`
		OuterIndex             *int    `json:"outerIndex"`
		ExpectedLossMultiplier string  `json:"expectedLossMultiplier"`
		MinBet                 string  `json:"minBet"`
		Enabled                bool    `json:"enabled"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.OuterIndex == nil || *body.OuterIndex != ZeroOuterIndex {
		t.Errorf("outerIndex = %v, want %d", body.OuterIndex, ZeroOuterIndex)
	}
	if body.OuterValues[ZeroOuterIndex] != 0 {
		t.Errorf("outer segment %d = %d, want 0", ZeroOuterIndex, body.OuterValues[ZeroOuterIndex])
	}
	if body.ExpectedLossMultiplier != "1.47" {
		t.Errorf("expectedLossMultiplier = %q, want 1.47", body.ExpectedLossMultiplier)
	}
	if len(body.InnerWeights) != 4 || body.MinBet != "1" || !body.Enabled {
		t.Errorf("unexpected wheel %+v", body)
	}
}
