package paymentdto

import "github.com/LavaJover/shvark-mypvit-relay/internal/domain"

type InitiatePaymentOutput struct {
	TransactionID       string
	MerchantReferenceID string
	Reference           string
	Status              domain.TransactionStatus
	Amount              int64
	Operator            string
	Message             string
}

type PaymentStatusOutput struct {
	TransactionID string
	ReservationID string
	Status        domain.TransactionStatus
	Amount        int64
	Operator      string
	Timestamp     string
}
