// gateway.go is the boundary to the PIX provider.

package payments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
)

// ChargeRequest asks the provider for a new charge.
type ChargeRequest struct {
	TxID      string
	Amount    decimal.Decimal
	ExpiresAt time.Time
}

// Charge is the provider's answer: an id and the payload the player pays.
type Charge struct {
	ID     string
	BRCode string
}

// Payout is a transfer to a player's key.
type Payout struct {
	Reference string
	Amount    decimal.Decimal
	Key       string
	KeyType   PixKeyType
}

// Gateway creates charges, reports their status and sends payouts.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	ChargeStatus(ctx context.Context, chargeID string) (Status, error)
	SendPayout(ctx context.Context, p Payout) (string, error)
}

// SimulatedGateway keeps charges in memory. Charges stay pending until
// MarkPaid is called; payouts always succeed.
type SimulatedGateway struct {
	mu      sync.Mutex
	charges map[string]Status

	receiverKey  string
	merchantName string
	merchantCity string
}

// NewSimulatedGateway creates a gateway that issues payloads for receiverKey.
func NewSimulatedGateway(receiverKey, merchantName, merchantCity string) *SimulatedGateway {
	return &SimulatedGateway{
		charges:      make(map[string]Status),
		receiverKey:  receiverKey,
		merchantName: merchantName,
		merchantCity: merchantCity,
	}
}

// CreateCharge registers a pending charge.
func (g *SimulatedGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	g.mu.Lock()
	g.charges[id] = StatusPending
	g.mu.Unlock()

	code := BRCode{
		Key:          g.receiverKey,
		MerchantName: g.merchantName,
		MerchantCity: g.merchantCity,
		TxID:         req.TxID,
		Amount:       req.Amount,
	}
	return &Charge{ID: id, BRCode: code.Encode()}, nil
}

// ChargeStatus reports the charge state.
func (g *SimulatedGateway) ChargeStatus(ctx context.Context, chargeID string) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.charges[chargeID]
	if !ok {
		return "", common.ErrDepositNotFound
	}
	return st, nil
}

// MarkPaid simulates the payer settling a charge.
func (g *SimulatedGateway) MarkPaid(chargeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.charges[chargeID]; !ok {
		return common.ErrDepositNotFound
	}
	g.charges[chargeID] = StatusCompleted
	return nil
}

// SendPayout logs the transfer and returns a fake end-to-end id.
func (g *SimulatedGateway) SendPayout(ctx context.Context, p Payout) (string, error) {
	e2e := "E" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:31]
	log.WithFields(log.Fields{
		"reference": p.Reference,
		"amount":    p.Amount.String(),
		"key":       MaskPixKey(p.Key),
		"key_type":  p.KeyType,
		"e2e_id":    e2e,
	}).Info("Simulated PIX payout sent")
	return e2e, nil
}
