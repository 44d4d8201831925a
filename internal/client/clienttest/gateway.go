// Package clienttest provides a scripted domain.PaymentGateway for tests.
package clienttest

import (
	"context"
	"sync"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
)

// Gateway records every call. A nil *Func field answers with a canned
// success.
type Gateway struct {
	mu sync.Mutex

	RenewFunc    func(req domain.RenewSecretRequest) (*domain.RenewedSecret, error)
	InitiateFunc func(req domain.InitiatePaymentRequest) (*domain.InitiatedPayment, error)
	StatusFunc   func(transactionID, secret string) (*domain.PaymentStatus, error)
	FeesFunc     func(amount int64, secret string) (*domain.FeeQuote, error)
	BalanceFunc  func(secret string) (*domain.Balance, error)

	Renewals  []domain.RenewSecretRequest
	Initiated []domain.InitiatePaymentRequest
	Queried   []string
	Secrets   []string
}

func (g *Gateway) RenewSecret(ctx context.Context, req domain.RenewSecretRequest) (*domain.RenewedSecret, error) {
	g.mu.Lock()
	g.Renewals = append(g.Renewals, req)
	fn := g.RenewFunc
	g.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &domain.RenewedSecret{Secret: "renewed-secret", ExpiresIn: 3600}, nil
}

func (g *Gateway) InitiatePayment(ctx context.Context, req domain.InitiatePaymentRequest) (*domain.InitiatedPayment, error) {
	g.mu.Lock()
	g.Initiated = append(g.Initiated, req)
	g.Secrets = append(g.Secrets, req.Secret)
	fn := g.InitiateFunc
	g.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	reference := req.Reference
	if reference == "" {
		reference = "NAT00000000ABCD"
	}
	return &domain.InitiatedPayment{
		Status:              domain.StatusPending,
		TransactionID:       "TX-" + reference,
		MerchantReferenceID: "MR-" + reference,
		Reference:           reference,
		Operator:            req.OperatorCode,
		Message:             "payment initiated",
	}, nil
}

func (g *Gateway) QueryStatus(ctx context.Context, transactionID, secret string) (*domain.PaymentStatus, error) {
	g.mu.Lock()
	g.Queried = append(g.Queried, transactionID)
	g.Secrets = append(g.Secrets, secret)
	fn := g.StatusFunc
	g.mu.Unlock()
	if fn != nil {
		return fn(transactionID, secret)
	}
	return &domain.PaymentStatus{TransactionID: transactionID, Status: domain.StatusPending}, nil
}

func (g *Gateway) CalculateFees(ctx context.Context, amount int64, secret string) (*domain.FeeQuote, error) {
	g.mu.Lock()
	g.Secrets = append(g.Secrets, secret)
	fn := g.FeesFunc
	g.mu.Unlock()
	if fn != nil {
		return fn(amount, secret)
	}
	return &domain.FeeQuote{Amount: amount, Fees: 0, Total: float64(amount)}, nil
}

func (g *Gateway) CheckBalance(ctx context.Context, secret string) (*domain.Balance, error) {
	g.mu.Lock()
	g.Secrets = append(g.Secrets, secret)
	fn := g.BalanceFunc
	g.mu.Unlock()
	if fn != nil {
		return fn(secret)
	}
	return &domain.Balance{Balance: 0, Currency: "XAF"}, nil
}

func (g *Gateway) RenewCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Renewals)
}

func (g *Gateway) InitiateCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Initiated)
}

// Events collects emitted payment events.
type Events struct {
	mu     sync.Mutex
	Events []domain.PaymentEvent
}

func (e *Events) Emit(ctx context.Context, event domain.PaymentEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
}

func (e *Events) Types() []domain.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.EventType, 0, len(e.Events))
	for _, ev := range e.Events {
		out = append(out, ev.Type)
	}
	return out
}

func (e *Events) Count(t domain.EventType) int {
	n := 0
	for _, got := range e.Types() {
		if got == t {
			n++
		}
	}
	return n
}
