package domain

import (
	"context"
	"encoding/json"
)

// MaxReferenceLength is the longest merchant reference the gateway accepts.
const MaxReferenceLength = 15

// PaymentGateway is the mobile-money gateway API.
type PaymentGateway interface {
	RenewSecret(ctx context.Context, req RenewSecretRequest) (*RenewedSecret, error)
	InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatedPayment, error)
	QueryStatus(ctx context.Context, transactionID, secret string) (*PaymentStatus, error)
	CalculateFees(ctx context.Context, amount int64, secret string) (*FeeQuote, error)
	CheckBalance(ctx context.Context, secret string) (*Balance, error)
}

type RenewSecretRequest struct {
	AccountCode   string
	CallbackCode  string
	Password      string
	CurrentSecret string
}

type RenewedSecret struct {
	Secret    string
	ExpiresIn int64
}

type InitiatePaymentRequest struct {
	Amount        int64
	PhoneNumber   string
	Reference     string
	OperatorCode  string
	AccountCode   string
	Secret        string
	ReservationID string
	Metadata      map[string]string
}

type InitiatedPayment struct {
	Status              TransactionStatus
	TransactionID       string
	MerchantReferenceID string
	Reference           string
	Operator            string
	Message             string
}

type PaymentStatus struct {
	TransactionID string
	Status        TransactionStatus
	Amount        int64
	Operator      string
	Timestamp     string
}

type FeeQuote struct {
	Amount    int64
	Fees      float64
	Total     float64
	Breakdown json.RawMessage
}

type Balance struct {
	Balance  float64
	Currency string
}
